package entity

import (
	"fmt"
	"time"
)

// QuoteDate holds the three date sub-fields exactly as typed in the form.
// Day and year are digits, month is a month name (letters only).
type QuoteDate struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// String renders the date as it appears on the document header
func (d QuoteDate) String() string {
	return fmt.Sprintf("%s %s %s", d.Day, d.Month, d.Year)
}

// QuoteForm is the user input for one generation request.
// It lives for a single request and is never persisted as-is.
type QuoteForm struct {
	ClientName  string    `json:"client_name"`
	Date        QuoteDate `json:"date"`
	Price       string    `json:"price"`
	Includes    string    `json:"includes"`
	Description string    `json:"description"` // newline-delimited paragraphs
}

// QuoteRecord is the register entry written for every finalized quote
type QuoteRecord struct {
	ID           int64     `json:"id"`
	Number       int       `json:"number"`
	ClientName   string    `json:"client_name"`
	QuoteDate    string    `json:"quote_date"`
	Price        string    `json:"price"`
	Includes     string    `json:"includes"`
	FileName     string    `json:"file_name"`
	Pages        int       `json:"pages"`
	DroppedLines int       `json:"dropped_lines"`
	CreatedAt    time.Time `json:"created_at"`
}
