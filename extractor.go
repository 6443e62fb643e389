// extractor.go: Typed record extraction from located sections
//
// Generic pair/value extraction reads the keyword line's count, decodes
// body lines until the expected raw values are accumulated, and reshapes
// them in encounter order - no sorting happens at this layer. Entity
// extractors are thin adapters attaching semantic field names to the
// positional tuples.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// Point is one station/elevation coordinate of a cross section or
// structure profile. Station is lateral distance across the section,
// not a linear index.
type Point struct {
	Station   float64
	Elevation float64
}

// PairRecord is the generic result of extracting a PAIR-keyword record.
type PairRecord struct {
	Section Section
	Count   int
	// Pairs holds the reshaped tuples in encounter order; for tuple
	// sizes above 2 the extra components follow in Extra, row-aligned.
	Pairs [][2]float64
	// Extra holds components beyond the first two for wide tuples
	// (storage curves), one row per pair.
	Extra [][]float64
	// Skipped counts non-numeric chunks the codec tolerated. Zero for
	// clean files; surfaced so silent data loss is observable.
	Skipped int
}

// ValueRecord is the generic result of extracting a VALUE-keyword record.
type ValueRecord struct {
	Section Section
	Count   int
	// Inline holds values carried on the keyword line itself, after the
	// count token. Values holds the body values, inline included, in
	// encounter order.
	Inline  []float64
	Values  []float64
	Skipped int
}

// Manning carries a cross section's roughness assignment: either a
// uniform {left overbank, channel, right overbank} triple or a list of
// per-station breakpoints.
type Manning struct {
	Uniform bool
	LOB     float64
	Channel float64
	ROB     float64
	Breaks  []ManningBreak
}

// ManningBreak is one (station, n) roughness breakpoint.
type ManningBreak struct {
	Station float64
	N       float64
}

// CrossSection is one surveyed channel slice, addressed by its business
// key (river, reach, station text) rather than a numeric index. Extracted
// records are independent copies with no back-reference to the source
// lines, so callers may mutate them freely before patching.
type CrossSection struct {
	River   string
	Reach   string
	Station string

	Points    []Point
	LeftBank  float64
	RightBank float64
	Manning   Manning

	// Section is the span of the station/elevation record at extraction
	// time. The patcher re-derives the span fresh; this one is for
	// reporting only.
	Section Section
	Skipped int
}

// StorageRow is one elevation/area/volume row of a storage-area curve.
type StorageRow struct {
	Elevation float64
	Area      float64
	Volume    float64
}

// StorageCurve is a storage area's stage-storage relationship, elevation
// strictly increasing.
type StorageCurve struct {
	Name    string
	Rows    []StorageRow
	Section Section
	Skipped int
}

// StructureKind discriminates the structure profile variants.
type StructureKind int

const (
	WeirProfile StructureKind = iota
	BridgeDeck
	CulvertBarrel
)

func (k StructureKind) String() string {
	switch k {
	case WeirProfile:
		return "weir"
	case BridgeDeck:
		return "deck"
	case CulvertBarrel:
		return "culvert"
	default:
		return "unknown"
	}
}

// StructureProfile is one hydraulic structure's station/elevation profile
// plus the scalar attributes specific to its kind.
type StructureProfile struct {
	Kind   StructureKind
	Points []Point

	// Weir and deck attributes
	WeirCoefficient float64
	DeckWidth       float64

	// Culvert attributes
	CulvertShape int
	Barrels      int

	Section Section
	Skipped int
}

// RecordError ties a per-record failure to its location for batch scans.
type RecordError struct {
	Line    int
	Keyword string
	Err     error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line+1, e.Keyword, e.Err)
}

// RecordExtractor turns located sections into typed entities.
type RecordExtractor struct {
	cfg     Config
	table   *KeywordTable
	locator *SectionLocator
}

// NewRecordExtractor returns an extractor using the builtin keyword table.
func NewRecordExtractor(cfg Config) *RecordExtractor {
	return NewRecordExtractorWithTable(cfg, NewKeywordTable())
}

// NewRecordExtractorWithTable returns an extractor over a caller-supplied
// keyword table, for deployments with YAML keyword extensions.
func NewRecordExtractorWithTable(cfg Config, table *KeywordTable) *RecordExtractor {
	cfg = cfg.WithDefaults()
	return &RecordExtractor{
		cfg:     cfg,
		table:   table,
		locator: NewSectionLocator(table),
	}
}

// Table exposes the keyword table the extractor resolves against.
func (e *RecordExtractor) Table() *KeywordTable { return e.table }

// ExtractPairs extracts one PAIR-keyword record starting at or after line
// from. The count on the keyword line means N tuples: 2N raw values for
// station/elevation style records, 3N for the storage curve.
func (e *RecordExtractor) ExtractPairs(g *GeometryFile, keyword string, from int) (*PairRecord, error) {
	return e.extractPairs(g, nil, keyword, from)
}

func (e *RecordExtractor) extractPairs(g *GeometryFile, ix *LineIndex, keyword string, from int) (*PairRecord, error) {
	section, err := e.locator.LocateIndexed(g.Lines(), ix, keyword, from)
	if err != nil {
		return nil, err
	}

	lines := g.Lines()
	count, err := ParseCount(lines[section.Start], keyword)
	if err != nil {
		return nil, err
	}

	tupleSize := 2
	if spec, ok := e.table.Spec(keyword); ok && spec.TupleSize > 0 {
		tupleSize = spec.TupleSize
	}

	raw, skipped, err := e.decodeBody(lines, section, count*tupleSize)
	if err != nil {
		return nil, err
	}

	record := &PairRecord{
		Section: section,
		Count:   count,
		Pairs:   make([][2]float64, 0, count),
		Skipped: skipped,
	}
	for i := 0; i < count; i++ {
		base := i * tupleSize
		record.Pairs = append(record.Pairs, [2]float64{raw[base], raw[base+1]})
		if tupleSize > 2 {
			record.Extra = append(record.Extra, raw[base+2:base+tupleSize])
		}
	}
	return record, nil
}

// ExtractValues extracts one VALUE-keyword record starting at or after
// line from. The count means N raw values; values on the keyword line
// itself (after the count) are consumed first.
func (e *RecordExtractor) ExtractValues(g *GeometryFile, keyword string, from int) (*ValueRecord, error) {
	return e.extractValues(g, nil, keyword, from)
}

func (e *RecordExtractor) extractValues(g *GeometryFile, ix *LineIndex, keyword string, from int) (*ValueRecord, error) {
	section, err := e.locator.LocateIndexed(g.Lines(), ix, keyword, from)
	if err != nil {
		return nil, err
	}

	lines := g.Lines()
	count, err := ParseCount(lines[section.Start], keyword)
	if err != nil {
		return nil, err
	}

	record := &ValueRecord{Section: section, Count: count}

	// Inline comma values follow the count on the keyword line. A line
	// carrying more values than its count promises contributes only the
	// promised ones, same as decodeBody capping at the expected total.
	if inline := ExtractCommaValues(lines[section.Start]); len(inline) > 1 {
		record.Inline = inline[1:] // drop the count itself
		record.Values = append(record.Values, record.Inline...)
		if len(record.Values) > count {
			record.Values = record.Values[:count]
		}
	}

	if len(record.Values) < count {
		raw, skipped, err := e.decodeBody(lines, section, count-len(record.Values))
		if err != nil {
			return nil, err
		}
		record.Values = append(record.Values, raw...)
		record.Skipped = skipped
	}

	return record, nil
}

// decodeBody decodes section body lines until total raw values are
// accumulated. Lines may be partially filled only on the last line of the
// record; running past the section with values still owed means the count
// token promised more data than the record carries.
func (e *RecordExtractor) decodeBody(lines []string, section Section, total int) ([]float64, int, error) {
	values := make([]float64, 0, total)
	skipped := 0

	for n := section.Start + 1; n < section.End && len(values) < total; n++ {
		lineValues, lineSkipped := DecodeLine(lines[n], e.cfg.ColumnWidth)
		skipped += lineSkipped
		values = append(values, lineValues...)
	}

	if e.cfg.StrictDecode && skipped > 0 {
		return nil, skipped, errors.New(ErrCodeMalformedValue,
			fmt.Sprintf("record %q at line %d contains %d non-numeric chunks",
				section.Keyword, section.Start+1, skipped))
	}

	if len(values) < total {
		return nil, skipped, errors.New(ErrCodeIncompleteRecord,
			fmt.Sprintf("record %q at line %d promises %d values but carries %d",
				section.Keyword, section.Start+1, total, len(values)))
	}

	return values[:total], skipped, nil
}

// ExtractCrossSection extracts the cross section identified by its
// business key. River and reach come from the enclosing "River Reach="
// header, the station from the section header line.
func (e *RecordExtractor) ExtractCrossSection(g *GeometryFile, river, reach, station string) (*CrossSection, error) {
	headerLine, err := e.findSectionHeader(g, river, reach, station)
	if err != nil {
		return nil, err
	}
	return e.extractCrossSectionAt(g, nil, river, reach, station, headerLine)
}

// extractCrossSectionAt extracts the cross section whose header sits at
// headerLine. The sub-records are searched only up to the next section
// header so records never bleed across cross sections. Batch callers pass
// a LineIndex to resolve sub-record keywords without rescanning.
func (e *RecordExtractor) extractCrossSectionAt(g *GeometryFile, ix *LineIndex, river, reach, station string, headerLine int) (*CrossSection, error) {
	lines := g.Lines()

	limit := len(lines)
	for n := headerLine + 1; n < len(lines); n++ {
		if matchesKeyword(lines[n], KeywordSectionHeader) || matchesKeyword(lines[n], KeywordRiverReach) {
			limit = n
			break
		}
	}

	pairs, err := e.extractPairs(g, ix, KeywordStationElevation, headerLine)
	if err != nil {
		return nil, err
	}
	if pairs.Section.Start >= limit {
		return nil, errors.New(ErrCodeRecordNotFound,
			fmt.Sprintf("cross section %s/%s/%s has no station/elevation record", river, reach, station))
	}

	xs := &CrossSection{
		River:   river,
		Reach:   reach,
		Station: station,
		Points:  make([]Point, 0, len(pairs.Pairs)),
		Section: pairs.Section,
		Skipped: pairs.Skipped,
	}
	for _, p := range pairs.Pairs {
		xs.Points = append(xs.Points, Point{Station: p[0], Elevation: p[1]})
	}

	// Manning and bank stations are optional sub-records.
	if manning, err := e.extractValues(g, ix, KeywordManning, headerLine); err == nil && manning.Section.Start < limit {
		xs.Manning = reshapeManning(manning)
		xs.Skipped += manning.Skipped
	}

	if left, right, ok := e.extractBankStations(lines, headerLine, limit); ok {
		xs.LeftBank = left
		xs.RightBank = right
	}

	return xs, nil
}

// extractBankStations reads the single-line "Bank Sta=left,right" record
// within [from, limit).
func (e *RecordExtractor) extractBankStations(lines []string, from, limit int) (left, right float64, ok bool) {
	for n := from; n < limit && n < len(lines); n++ {
		if !matchesKeyword(lines[n], KeywordBankStations) {
			continue
		}
		values := ExtractCommaValues(lines[n])
		if len(values) >= 2 {
			return values[0], values[1], true
		}
		return 0, 0, false
	}
	return 0, 0, false
}

// reshapeManning interprets a Manning record: exactly three values is the
// uniform {LOB, channel, ROB} triple the tools emit for simple sections;
// anything else is a per-station breakpoint list of (station, n) pairs.
func reshapeManning(record *ValueRecord) Manning {
	if record.Count == 3 && len(record.Values) == 3 {
		return Manning{
			Uniform: true,
			LOB:     record.Values[0],
			Channel: record.Values[1],
			ROB:     record.Values[2],
		}
	}

	m := Manning{}
	for i := 0; i+1 < len(record.Values); i += 2 {
		m.Breaks = append(m.Breaks, ManningBreak{
			Station: record.Values[i],
			N:       record.Values[i+1],
		})
	}
	return m
}

// findSectionHeader scans for the "Type RM Length L Ch R =" line whose
// station token matches, inside the reach named by the enclosing
// "River Reach=" header.
func (e *RecordExtractor) findSectionHeader(g *GeometryFile, river, reach, station string) (int, error) {
	lines := g.Lines()
	currentRiver, currentReach := "", ""

	for n, line := range lines {
		if matchesKeyword(line, KeywordRiverReach) {
			currentRiver, currentReach = parseRiverReach(line)
			continue
		}
		if !matchesKeyword(line, KeywordSectionHeader) {
			continue
		}
		if currentRiver != river || currentReach != reach {
			continue
		}
		if headerStation(line) == station {
			return n, nil
		}
	}

	return 0, errors.New(ErrCodeRecordNotFound,
		fmt.Sprintf("cross section %s/%s/%s not found", river, reach, station))
}

// parseRiverReach splits a "River Reach=river,reach" header.
func parseRiverReach(line string) (river, reach string) {
	rest := strings.TrimPrefix(line, KeywordRiverReach)
	parts := strings.SplitN(rest, ",", 2)
	river = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		reach = strings.TrimSpace(parts[1])
	}
	return river, reach
}

// headerStation returns the station token of a section header line. The
// station is the second comma field ("Type RM Length L Ch R = 1 ,41950,...")
// and is compared as text: it is a business key, not a number.
func headerStation(line string) string {
	rest := strings.TrimPrefix(line, KeywordSectionHeader)
	parts := strings.Split(rest, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ScanCrossSections extracts every cross section in the file. Failures
// are collected per record, never aborting the batch: a 300-section reach
// with one bad record still yields 299 sections plus one RecordError.
func (e *RecordExtractor) ScanCrossSections(g *GeometryFile) ([]*CrossSection, []RecordError) {
	lines := g.Lines()
	var sections []*CrossSection
	var failures []RecordError

	// One index build amortizes the per-section keyword lookups across
	// the whole file.
	ix := BuildLineIndex(lines, e.table)

	currentRiver, currentReach := "", ""
	for n, line := range lines {
		if matchesKeyword(line, KeywordRiverReach) {
			currentRiver, currentReach = parseRiverReach(line)
			continue
		}
		if !matchesKeyword(line, KeywordSectionHeader) {
			continue
		}

		station := headerStation(line)
		xs, err := e.extractCrossSectionAt(g, ix, currentRiver, currentReach, station, n)
		if err != nil {
			failures = append(failures, RecordError{Line: n, Keyword: KeywordSectionHeader, Err: err})
			continue
		}
		sections = append(sections, xs)
	}

	return sections, failures
}

// ExtractStorageCurve extracts the elevation/area/volume curve of the
// named storage area. With an empty name, the first curve in the file.
func (e *RecordExtractor) ExtractStorageCurve(g *GeometryFile, name string) (*StorageCurve, error) {
	lines := g.Lines()
	from := 0

	if name != "" {
		found := false
		for n, line := range lines {
			if matchesKeyword(line, KeywordStorageArea) && storageAreaName(line) == name {
				from = n
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New(ErrCodeRecordNotFound,
				fmt.Sprintf("storage area %q not found", name))
		}
	}

	record, err := e.ExtractPairs(g, KeywordStorageCurve, from)
	if err != nil {
		return nil, err
	}

	curve := &StorageCurve{
		Name:    name,
		Rows:    make([]StorageRow, 0, len(record.Pairs)),
		Section: record.Section,
		Skipped: record.Skipped,
	}
	for i, p := range record.Pairs {
		row := StorageRow{Elevation: p[0], Area: p[1], Volume: math.NaN()}
		if i < len(record.Extra) && len(record.Extra[i]) > 0 {
			row.Volume = record.Extra[i][0]
		}
		curve.Rows = append(curve.Rows, row)
	}
	return curve, nil
}

// storageAreaName returns the name field of a "Storage Area=name,..." line.
func storageAreaName(line string) string {
	rest := strings.TrimPrefix(line, KeywordStorageArea)
	parts := strings.SplitN(rest, ",", 2)
	return strings.TrimSpace(parts[0])
}

// profileKeywords maps a structure kind to its profile keyword and the
// attribute keywords scanned after the profile.
func profileKeywords(kind StructureKind) (profile string, ok bool) {
	switch kind {
	case WeirProfile:
		return KeywordWeirProfile, true
	case BridgeDeck:
		return KeywordDeckProfile, true
	case CulvertBarrel:
		return KeywordCulvertProfile, true
	default:
		return "", false
	}
}

// ExtractStructureProfile extracts a structure's station/elevation profile
// plus its kind-specific scalar attributes, starting at or after line from.
func (e *RecordExtractor) ExtractStructureProfile(g *GeometryFile, kind StructureKind, from int) (*StructureProfile, error) {
	keyword, ok := profileKeywords(kind)
	if !ok {
		return nil, errors.New(ErrCodeInvalidKeywordSpec,
			fmt.Sprintf("unknown structure kind %d", int(kind)))
	}

	record, err := e.ExtractPairs(g, keyword, from)
	if err != nil {
		return nil, err
	}

	profile := &StructureProfile{
		Kind:    kind,
		Points:  make([]Point, 0, len(record.Pairs)),
		Section: record.Section,
		Skipped: record.Skipped,
	}
	for _, p := range record.Pairs {
		profile.Points = append(profile.Points, Point{Station: p[0], Elevation: p[1]})
	}

	e.scanStructureAttributes(g.Lines(), record.Section.End, profile)
	return profile, nil
}

// scanStructureAttributes reads the scalar attribute lines that follow a
// structure profile, stopping at the next section or reach header.
func (e *RecordExtractor) scanStructureAttributes(lines []string, from int, profile *StructureProfile) {
	for n := from; n < len(lines); n++ {
		line := lines[n]
		if matchesKeyword(line, KeywordSectionHeader) || matchesKeyword(line, KeywordRiverReach) {
			return
		}

		switch {
		case matchesKeyword(line, KeywordWeirCoefficient), matchesKeyword(line, KeywordDeckWeirCoef):
			if v, ok := firstValueAfterEquals(line); ok {
				profile.WeirCoefficient = v
			}
		case matchesKeyword(line, KeywordDeckWidth):
			if v, ok := firstValueAfterEquals(line); ok {
				profile.DeckWidth = v
			}
		case matchesKeyword(line, KeywordCulvertShape):
			if v, ok := firstValueAfterEquals(line); ok {
				profile.CulvertShape = int(v)
			}
		case matchesKeyword(line, KeywordCulvertBarrels):
			if v, ok := firstValueAfterEquals(line); ok {
				profile.Barrels = int(v)
			}
		}
	}
}

// firstValueAfterEquals parses the first numeric token after "=".
func firstValueAfterEquals(line string) (float64, bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return 0, false
	}
	token := line[idx+1:]
	if c := strings.IndexByte(token, ','); c >= 0 {
		token = token[:c]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
