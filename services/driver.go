package services

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"auction-etl/models"
	"auction-etl/storage"
	"auction-etl/utils"
)

// itemsKey is the document root key holding the listing sequence.
const itemsKey = "Items"

// Driver feeds the listings of each document through the extractors and
// appends their rows to a RowWriter. It is not safe for concurrent use.
type Driver struct {
	logger    *utils.Logger
	tf        *Transformer
	extractor *Extractor
	writer    storage.RowWriter
	report    *models.RunReport
}

// NewDriver creates a Driver writing to w.
func NewDriver(w storage.RowWriter, strict bool, logger *utils.Logger) *Driver {
	report := models.NewRunReport()
	tf := NewTransformer(logger)
	return &Driver{
		logger:    logger,
		tf:        tf,
		extractor: NewExtractor(logger, tf, strict, report),
		writer:    w,
		report:    report,
	}
}

// ParseDocument decodes one JSON document, keeping numbers as written.
func ParseDocument(r io.Reader) (models.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc models.Record
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// ProcessFile parses and processes the document at path.
func (d *Driver) ProcessFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("driver: open %q: %w", path, err)
	}
	defer f.Close()

	doc, err := ParseDocument(f)
	if err != nil {
		return fmt.Errorf("driver: %s: %w", path, err)
	}
	if err := d.ProcessDocument(doc); err != nil {
		return fmt.Errorf("driver: %s: %w", path, err)
	}
	return nil
}

// ProcessDocument runs every listing under the Items key in input order.
func (d *Driver) ProcessDocument(doc models.Record) error {
	d.report.Documents++

	if !doc.Has(itemsKey) {
		d.logger.Warn("[driver] Document has no %q sequence, nothing to extract", itemsKey)
		return nil
	}
	listings, _ := doc.List(itemsKey)
	for i, el := range listings {
		listing, ok := el.(map[string]any)
		if !ok {
			if err := d.extractor.fail(fmt.Errorf("%s[%d]: %w", itemsKey, i, models.ErrWrongType)); err != nil {
				return err
			}
			continue
		}
		if err := d.ProcessListing(models.Record(listing)); err != nil {
			return fmt.Errorf("listing %d: %w", i, err)
		}
	}
	d.logger.Debug("[driver] Processed %d listings", len(listings))
	return nil
}

// ProcessListing runs the four extractors over one listing and flushes its
// rows. Each relation gets a fresh deduplication set.
func (d *Driver) ProcessListing(listing models.Record) error {
	if _, ok, err := d.extractor.ListingID(listing); !ok {
		return err
	}

	item, err := d.extractor.Item(listing)
	if err != nil {
		return err
	}
	if err := d.emit(models.Items, []string{item}); err != nil {
		return err
	}

	steps := []struct {
		rel models.Relation
		fn  func(models.Record, *utils.RowSet) error
	}{
		{models.Categories, d.extractor.Categories},
		{models.Bids, d.extractor.Bids},
		{models.Users, d.extractor.Users},
	}
	for _, step := range steps {
		set := utils.NewRowSet()
		if err := step.fn(listing, set); err != nil {
			return err
		}
		if err := d.emit(step.rel, set.Rows()); err != nil {
			return err
		}
	}

	d.report.Listings++
	return d.writer.Flush()
}

func (d *Driver) emit(rel models.Relation, rows []string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := d.writer.Append(rel, rows); err != nil {
		return err
	}
	d.report.Rows[rel] += len(rows)
	return nil
}

// Report returns the counters accumulated so far.
func (d *Driver) Report() *models.RunReport {
	d.report.UnknownMonths = d.tf.UnknownMonths()
	return d.report
}
