// Package export serializes qualified leads and their outreach messages into
// the downloadable artifact formats: a lead spreadsheet, a UTF-8-BOM
// salesflow CSV, a zip bundle of both, and a CRM-remapped CSV.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

// utf8BOM prefixes CSV output so spreadsheet applications detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// leadColumns is the ordered header of the qualified-lead spreadsheet.
var leadColumns = []string{
	"Email",
	"First Name",
	"Last Name",
	"Job Title",
	"LinkedIn URL",
	"Company",
	"Company Domain",
	"Mobile",
	"Direct Phone",
	"HQ Phone",
	"Confidence",
}

// salesflowColumns is the ordered header of the salesflow CSV.
var salesflowColumns = []string{
	"First Name",
	"Last Name",
	"LinkedIn URL",
	"Company",
	"Job Title",
	"Email",
	"Company Domain",
	"Personalized Message",
}

// crmColumns is the ordered header of the CRM-remapped CSV.
var crmColumns = []string{
	"first_name",
	"last_name",
	"title",
	"account_name",
	"linkedin_c",
	"description",
}

// Build produces all export artifacts for a run, keyed by the model.Artifact*
// constants. The xlsx, salesflow CSV and CRM CSV are built concurrently; the
// zip bundle is assembled from the first two.
func Build(leads []model.QualifiedLead, messages []model.OutreachMessage) (map[string][]byte, error) {
	byLead := MessageIndex(messages)

	var xlsxBuf, csvBuf, crmBuf []byte
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		xlsxBuf, err = BuildXLSX(leads)
		return err
	})
	g.Go(func() error {
		var err error
		csvBuf, err = BuildSalesflowCSV(leads, byLead)
		return err
	})
	g.Go(func() error {
		var err error
		crmBuf, err = BuildCRMCSV(leads, byLead)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zipBuf, err := BuildZIP(xlsxBuf, csvBuf)
	if err != nil {
		return nil, err
	}

	return map[string][]byte{
		model.ArtifactXLSX:   xlsxBuf,
		model.ArtifactCSV:    csvBuf,
		model.ArtifactZIP:    zipBuf,
		model.ArtifactCRMCSV: crmBuf,
	}, nil
}

// MessageIndex keys message text by lower-cased lead email.
func MessageIndex(messages []model.OutreachMessage) map[string]string {
	idx := make(map[string]string, len(messages))
	for _, m := range messages {
		idx[strings.ToLower(m.LeadEmail)] = m.Text
	}
	return idx
}

// BuildXLSX writes the qualified leads as a single-sheet spreadsheet.
func BuildXLSX(leads []model.QualifiedLead) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Qualified Leads")
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range leadColumns {
		header.AddCell().SetString(col)
	}

	for _, l := range leads {
		confidence := ""
		if l.Confidence != nil {
			confidence = strconv.Itoa(*l.Confidence)
		}
		row := sheet.AddRow()
		for _, v := range []string{
			l.Email, l.FirstName, l.LastName, l.Position, l.LinkedInURL,
			l.Company, l.Domain, l.Mobile, l.DirectPhone, l.HQPhone, confidence,
		} {
			row.AddCell().SetString(v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write xlsx")
	}
	return buf.Bytes(), nil
}

// BuildSalesflowCSV writes the outreach-campaign records, UTF-8 with BOM.
func BuildSalesflowCSV(leads []model.QualifiedLead, messageByLead map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(salesflowColumns); err != nil {
		return nil, eris.Wrap(err, "export: write salesflow header")
	}
	for _, l := range leads {
		row := []string{
			l.FirstName,
			l.LastName,
			l.LinkedInURL,
			l.Company,
			l.Position,
			l.Email,
			l.Domain,
			messageByLead[strings.ToLower(l.Email)],
		}
		if err := w.Write(row); err != nil {
			return nil, eris.Wrap(err, "export: write salesflow row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "export: flush salesflow csv")
	}

	return buf.Bytes(), nil
}

// BuildCRMCSV writes leads remapped to the CRM import schema.
func BuildCRMCSV(leads []model.QualifiedLead, messageByLead map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(crmColumns); err != nil {
		return nil, eris.Wrap(err, "export: write crm header")
	}
	for _, l := range leads {
		row := []string{
			l.FirstName,
			l.LastName,
			l.Position,
			l.Company,
			l.LinkedInURL,
			messageByLead[strings.ToLower(l.Email)],
		}
		if err := w.Write(row); err != nil {
			return nil, eris.Wrap(err, "export: write crm row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "export: flush crm csv")
	}

	return buf.Bytes(), nil
}

// BuildZIP bundles the spreadsheet and salesflow CSV under fixed entry names.
func BuildZIP(xlsxData, csvData []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		data []byte
	}{
		{model.ZipEntryXLSX, xlsxData},
		{model.ZipEntryCSV, csvData},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, eris.Wrapf(err, "export: create zip entry %s", e.name)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, eris.Wrapf(err, "export: write zip entry %s", e.name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "export: close zip")
	}
	return buf.Bytes(), nil
}
