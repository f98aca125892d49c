package dto

import (
	"time"

	"github.com/paisetrail/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest is one debit or credit line of a new journal entry.
// Amounts are integer paise; there is no float money field anywhere in the API.
type CreateEntryLineRequest struct {
	AccountID   string `json:"accountID" binding:"required"`
	Direction   string `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	AmountPaise int64  `json:"amountPaise" binding:"required,gt=0"`
}

// CreateEntryRequest defines the payload for posting a balanced journal entry.
type CreateEntryRequest struct {
	ReferenceType string                   `json:"referenceType" binding:"required"`
	ReferenceID   string                   `json:"referenceID"`
	Description   string                   `json:"description" binding:"required"`
	EntryDate     time.Time                `json:"entryDate"`
	Lines         []CreateEntryLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReverseEntryRequest defines the payload for reversing a posted entry.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LineResponse defines the data returned for a ledger line.
type LineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	Direction    string          `json:"direction"`
	AmountPaise  int64           `json:"amountPaise"`
	AmountRupees decimal.Decimal `json:"amountRupees"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID         string         `json:"entryID"`
	ReferenceType   string         `json:"referenceType"`
	ReferenceID     string         `json:"referenceID"`
	Description     string         `json:"description"`
	EntryDate       time.Time      `json:"entryDate"`
	IsReversal      bool           `json:"isReversal"`
	ReversesEntryID *string        `json:"reversesEntryID,omitempty"`
	Lines           []LineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	CreatedBy       string         `json:"createdBy"`
}

// ListEntriesParams holds query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToLineResponse converts a domain.LedgerLine to LineResponse.
func ToLineResponse(l *domain.LedgerLine) LineResponse {
	return LineResponse{
		LineID:       l.LineID,
		AccountID:    l.AccountID,
		Direction:    string(l.Direction),
		AmountPaise:  int64(l.Amount),
		AmountRupees: l.Amount.Rupees(),
	}
}

// ToEntryResponse converts a domain.LedgerEntry (with any loaded lines) to
// EntryResponse.
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:         e.EntryID,
		ReferenceType:   string(e.ReferenceType),
		ReferenceID:     e.ReferenceID,
		Description:     e.Description,
		EntryDate:       e.EntryDate,
		IsReversal:      e.IsReversal,
		ReversesEntryID: e.ReversesEntryID,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToLineResponse(&e.Lines[i])
		}
	}
	return resp
}
