// Package export renders batch appraisal results to spreadsheet files.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/appraisal-cli/internal/model"
)

var reportHeader = []string{
	"Domain",
	"Estimated Value",
	"Confidence",
	"Domain Age",
	"Monthly Traffic",
	"SEO Score",
	"TLD Value",
	"Suggested Keywords",
	"Analysis",
}

// WriteXLSX writes one row per appraised domain to an XLSX report.
func WriteXLSX(path string, results []model.DomainAnalysis) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Appraisals")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range reportHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Domain)
		row.AddCell().SetInt(r.EstimatedValue)
		row.AddCell().SetInt(r.ConfidenceScore)
		row.AddCell().SetString(r.DomainAge)
		row.AddCell().SetString(r.MonthlyTraffic.String())
		row.AddCell().SetInt(r.SEOScore)
		row.AddCell().SetString(r.TLDValue)
		row.AddCell().SetString(joinKeywords(r.SuggestedKeywords))
		row.AddCell().SetString(r.DetailedAnalysis)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func joinKeywords(keywords []model.KeywordSuggestion) string {
	parts := make([]string, len(keywords))
	for i, k := range keywords {
		parts[i] = k.Keyword
	}
	return strings.Join(parts, ", ")
}

// ReadDomainColumn extracts the first column of the first sheet of an XLSX
// file, one domain per row. A header row containing "domain" is skipped.
func ReadDomainColumn(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("export: %s has no sheets", path)
	}

	var domains []string
	for i, row := range f.Sheets[0].Rows {
		if len(row.Cells) == 0 {
			continue
		}
		v := strings.TrimSpace(row.Cells[0].String())
		if v == "" {
			continue
		}
		if i == 0 && strings.EqualFold(v, "domain") {
			continue
		}
		domains = append(domains, v)
	}
	return domains, nil
}
