package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Student is an enrollee with the billing configuration and payment history
// synced from the desktop application.
type Student struct {
	ID                string             `json:"id"`
	FullName          string             `json:"fullName"`
	ClassName         string             `json:"className,omitempty"`
	ParentContact     string             `json:"parentContact,omitempty"`
	ClassGroup        string             `json:"classGroup"`
	AdmissionDate     string             `json:"admissionDate"`
	HasTransport      bool               `json:"hasTransport"`
	TransportFee      decimal.Decimal    `json:"transportFee"`
	HasCustomFees     bool               `json:"hasCustomFees"`
	CustomSchoolFee   decimal.Decimal    `json:"customSchoolFee"`
	FeePayments       []FeePayment       `json:"feePayments"`
	TransportPayments []TransportPayment `json:"transportPayments,omitempty"`
}

// FeePayment is the tuition record of one billing period (a month or a term).
type FeePayment struct {
	Period            int             `json:"period"`
	AmountDue         decimal.Decimal `json:"amountDue"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	Paid              bool            `json:"paid"`
	PaidDate          string          `json:"paidDate,omitempty"`
	IsTransportWaived bool            `json:"isTransportWaived"`
}

// TransportPayment is the transport record of one calendar month.
type TransportPayment struct {
	Month             int             `json:"month"`
	AmountDue         decimal.Decimal `json:"amountDue"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	Paid              bool            `json:"paid"`
	IsSkipped         bool            `json:"isSkipped"`
	IsWaived          bool            `json:"isWaived"`
	PaidDate          string          `json:"paidDate,omitempty"`
}

// UnmarshalJSON decodes a student document, treating absent or malformed
// payment collections as empty.
func (s *Student) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*s = Student{
		ID:              doc.str("id"),
		FullName:        doc.str("fullName", "name"),
		ClassName:       doc.str("className"),
		ParentContact:   doc.str("parentContact"),
		ClassGroup:      doc.str("classGroup"),
		AdmissionDate:   doc.date("admissionDate"),
		HasTransport:    doc.boolean("hasTransport"),
		TransportFee:    doc.amount("transportFee"),
		HasCustomFees:   doc.boolean("hasCustomFees"),
		CustomSchoolFee: doc.amount("customSchoolFee"),
	}
	for _, raw := range doc.array("feePayments") {
		var p FeePayment
		if err := json.Unmarshal(raw, &p); err == nil {
			s.FeePayments = append(s.FeePayments, p)
		}
	}
	for _, raw := range doc.array("transportPayments") {
		var p TransportPayment
		if err := json.Unmarshal(raw, &p); err == nil {
			s.TransportPayments = append(s.TransportPayments, p)
		}
	}
	return nil
}

// UnmarshalJSON decodes a fee payment leniently.
func (p *FeePayment) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*p = FeePayment{
		Period:            doc.integer("period"),
		AmountDue:         doc.amount("amountDue"),
		AmountPaid:        doc.amount("amountPaid"),
		OutstandingAmount: doc.amount("outstandingAmount"),
		Paid:              doc.boolean("paid"),
		PaidDate:          doc.date("paidDate"),
		IsTransportWaived: doc.boolean("isTransportWaived"),
	}
	return nil
}

// UnmarshalJSON decodes a transport payment leniently.
func (p *TransportPayment) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*p = TransportPayment{
		Month:             doc.integer("month"),
		AmountDue:         doc.amount("amountDue"),
		AmountPaid:        doc.amount("amountPaid"),
		OutstandingAmount: doc.amount("outstandingAmount"),
		Paid:              doc.boolean("paid"),
		IsSkipped:         doc.boolean("isSkipped"),
		IsWaived:          doc.boolean("isWaived"),
		PaidDate:          doc.date("paidDate"),
	}
	return nil
}

// OutstandingStudent is the pre-calculated outstanding figure published by the
// desktop application for one student.
type OutstandingStudent struct {
	ID                string          `json:"id"`
	FullName          string          `json:"fullName"`
	ClassName         string          `json:"className,omitempty"`
	ParentContact     string          `json:"parentContact,omitempty"`
	ClassGroup        string          `json:"classGroup"`
	AdmissionDate     string          `json:"admissionDate"`
	HasTransport      bool            `json:"hasTransport"`
	TransportFee      decimal.Decimal `json:"transportFee"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	LastUpdated       string          `json:"lastUpdated,omitempty"`
}

func (o *OutstandingStudent) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*o = OutstandingStudent{
		ID:                doc.str("id", "studentId"),
		FullName:          doc.str("fullName", "name"),
		ClassName:         doc.str("className"),
		ParentContact:     doc.str("parentContact"),
		ClassGroup:        doc.str("classGroup"),
		AdmissionDate:     doc.date("admissionDate"),
		HasTransport:      doc.boolean("hasTransport"),
		TransportFee:      doc.amount("transportFee"),
		OutstandingAmount: doc.amount("outstandingAmount"),
		LastUpdated:       doc.date("lastUpdated"),
	}
	return nil
}
