package services

import (
	"errors"
	"fmt"
	"strings"

	"auction-etl/models"
	"auction-etl/utils"
)

// ErrMissingRequired marks a required identifier that is absent or null.
var ErrMissingRequired = errors.New("missing required field")

// MissingFieldError names the required field that was absent.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequired, e.Path)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingRequired }

// Extractor turns one listing record into rows of the four relations.
//
// In strict mode any contract violation is returned to the caller and ends
// the run. Otherwise the offending sub-record is dropped, counted in the
// report and logged.
type Extractor struct {
	logger *utils.Logger
	tf     *Transformer
	strict bool
	report *models.RunReport
}

// NewExtractor creates an Extractor that records skips into report.
func NewExtractor(logger *utils.Logger, tf *Transformer, strict bool, report *models.RunReport) *Extractor {
	return &Extractor{logger: logger, tf: tf, strict: strict, report: report}
}

// fail returns err in strict mode; otherwise it counts the skip and returns nil.
func (e *Extractor) fail(err error) error {
	if e.strict {
		return err
	}
	e.report.Skipped++
	e.logger.Warn("[extract] Skipping record: %v", err)
	return nil
}

// ListingID returns the listing identifier. ok is false when the listing must
// be skipped; err is set only in strict mode.
func (e *Extractor) ListingID(rec models.Record) (id string, ok bool, err error) {
	id, ok = rec.Str("ItemID")
	if ok {
		return id, true, nil
	}
	return "", false, e.fail(&MissingFieldError{Path: "ItemID"})
}

// Item renders the single ITEMS row of a listing.
func (e *Extractor) Item(rec models.Record) (string, error) {
	id, err := requireID(rec)
	if err != nil {
		return "", err
	}

	started, err := e.optTime(rec, "Started", "Started")
	if err != nil {
		return "", err
	}
	ends, err := e.optTime(rec, "Ends", "Ends")
	if err != nil {
		return "", err
	}

	seller := models.NullToken
	if sid, ok := sellerID(rec); ok {
		seller = Escape(sid)
	} else if err := e.fail(&MissingFieldError{Path: "Seller.UserID"}); err != nil {
		return "", err
	}

	return joinRow(
		rawToken(id),
		optional(rec, "Name", Escape),
		e.optMoney(rec, "Currently"),
		e.optMoney(rec, "Buy_Price"),
		e.optMoney(rec, "First_Bid"),
		optional(rec, "Number_of_Bids", rawToken),
		started,
		ends,
		optional(rec, "Description", Escape),
		seller,
	), nil
}

// Categories adds one row per distinct category label of the listing to set.
func (e *Extractor) Categories(rec models.Record, set *utils.RowSet) error {
	id, err := requireID(rec)
	if err != nil {
		return err
	}

	labels, err := rec.Strings("Category")
	if err != nil {
		return e.fail(fmt.Errorf("listing %s: %w", id, err))
	}
	for _, label := range labels {
		set.Add(joinRow(Escape(label), rawToken(id)))
	}
	return nil
}

// Bids adds one row per bid of the listing to set. Absent or null Bids
// contribute nothing.
func (e *Extractor) Bids(rec models.Record, set *utils.RowSet) error {
	id, err := requireID(rec)
	if err != nil {
		return err
	}

	return e.eachBid(rec, func(path string, bid, bidder models.Record, bidderID string) error {
		when, err := e.optTime(bid, "Time", path+".Time")
		if err != nil {
			return err
		}
		set.Add(joinRow(
			rawToken(id),
			Escape(bidderID),
			when,
			e.optMoney(bid, "Amount"),
		))
		return nil
	})
}

// Users adds one row per bidder and one row for the seller to set. Bidders
// carry their own location and country; the seller borrows the listing's.
func (e *Extractor) Users(rec models.Record, set *utils.RowSet) error {
	if _, err := requireID(rec); err != nil {
		return err
	}

	err := e.eachBid(rec, func(_ string, _, bidder models.Record, bidderID string) error {
		set.Add(joinRow(
			Escape(bidderID),
			optional(bidder, "Location", Escape),
			optional(bidder, "Rating", rawToken),
			optional(bidder, "Country", Escape),
		))
		return nil
	})
	if err != nil {
		return err
	}

	id, ok := sellerID(rec)
	if !ok {
		return e.fail(&MissingFieldError{Path: "Seller.UserID"})
	}
	seller, _ := rec.Sub("Seller")
	set.Add(joinRow(
		Escape(id),
		optional(rec, "Location", Escape),
		optional(seller, "Rating", rawToken),
		optional(rec, "Country", Escape),
	))
	return nil
}

// eachBid walks Bids[i].Bid and calls fn for every bid with an identified
// bidder. Bids without a bidder identifier go through fail.
func (e *Extractor) eachBid(rec models.Record, fn func(path string, bid, bidder models.Record, bidderID string) error) error {
	bids, err := rec.Records("Bids")
	if err != nil {
		return e.fail(err)
	}
	for i, wrapper := range bids {
		path := fmt.Sprintf("Bids[%d].Bid", i)
		bid, ok := wrapper.Sub("Bid")
		if !ok {
			if err := e.fail(&MissingFieldError{Path: path}); err != nil {
				return err
			}
			continue
		}
		bidder, _ := bid.Sub("Bidder")
		bidderID, ok := bidder.Str("UserID")
		if !ok {
			if err := e.fail(&MissingFieldError{Path: path + ".Bidder.UserID"}); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, bid, bidder, bidderID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) optMoney(rec models.Record, name string) string {
	v, ok := rec.Str(name)
	if !ok {
		return models.NullToken
	}
	if d := e.tf.Dollar(v); d != "" {
		return d
	}
	return models.NullToken
}

func (e *Extractor) optTime(rec models.Record, name, path string) (string, error) {
	v, ok := rec.Str(name)
	if !ok {
		return models.NullToken, nil
	}
	out, err := e.tf.Dttm(v)
	if err == nil {
		return out, nil
	}
	if e.strict {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	e.logger.Warn("[extract] %s: %v, writing NULL", path, err)
	return models.NullToken, nil
}

// requireID returns the listing identifier the row extractors key on. Callers
// screen listings through ListingID first.
func requireID(rec models.Record) (string, error) {
	id, ok := rec.Str("ItemID")
	if !ok {
		return "", &MissingFieldError{Path: "ItemID"}
	}
	return id, nil
}

func sellerID(rec models.Record) (string, bool) {
	seller, ok := rec.Sub("Seller")
	if !ok {
		return "", false
	}
	return seller.Str("UserID")
}

// optional renders the field through render, or NULL when absent.
func optional(rec models.Record, name string, render func(string) string) string {
	v, ok := rec.Str(name)
	if !ok {
		return models.NullToken
	}
	return render(v)
}

// rawToken writes v unquoted unless it would collide with the row encoding.
func rawToken(v string) string {
	if v == models.NullToken || strings.ContainsAny(v, "|\"\r\n") {
		return Escape(v)
	}
	return v
}

func joinRow(fields ...string) string {
	return strings.Join(fields, string(models.Delimiter))
}
