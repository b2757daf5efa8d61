package models

import "github.com/shopspring/decimal"

// Expense is a school expense recorded in the desktop application.
type Expense struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Category       string          `json:"category"`
	ReceiptNumber  string          `json:"receiptNumber,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	IsReversed     bool            `json:"isReversed"`
	ReversedAt     string          `json:"reversedAt,omitempty"`
	ReversalReason string          `json:"reversalReason,omitempty"`
}

// UnmarshalJSON honours both reversal flags used by older desktop builds.
func (e *Expense) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*e = Expense{
		ID:             doc.str("id"),
		Description:    doc.str("description"),
		Amount:         doc.amount("amount"),
		Date:           doc.date("date"),
		Category:       doc.str("category"),
		ReceiptNumber:  doc.str("receiptNumber"),
		Notes:          doc.str("notes"),
		IsReversed:     doc.boolean("isReversed", "reversed"),
		ReversedAt:     doc.date("reversedAt"),
		ReversalReason: doc.str("reversalReason"),
	}
	return nil
}

// ExtraBilling is a one-off charge billed outside tuition and transport.
type ExtraBilling struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	StudentID   string          `json:"studentId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date,omitempty"`
}

func (b *ExtraBilling) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*b = ExtraBilling{
		ID:          doc.str("id"),
		Description: doc.str("description", "name"),
		StudentID:   doc.str("studentId"),
		Amount:      doc.amount("amount"),
		Date:        doc.date("date", "createdAt"),
	}
	return nil
}
