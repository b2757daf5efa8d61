package models

// Staff is a non-student member of the school.
type Staff struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Contact    string `json:"contact,omitempty"`
	Email      string `json:"email,omitempty"`
	DateJoined string `json:"dateJoined,omitempty"`
	IsActive   bool   `json:"isActive"`
}

// StaffLog is one attendance entry for a staff member on a given day.
type StaffLog struct {
	ID        string `json:"id"`
	StaffID   string `json:"staffId"`
	StaffName string `json:"staffName"`
	Role      string `json:"role"`
	Date      string `json:"date"`
	TimeIn    string `json:"timeIn,omitempty"`
	TimeOut   string `json:"timeOut,omitempty"`
	Duties    string `json:"duties"`
	Notes     string `json:"notes"`
	IsPresent bool   `json:"isPresent"`
}

// UnmarshalJSON accepts both camelCase and the snake_case columns of the
// older sync format.
func (s *Staff) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*s = Staff{
		ID:         doc.str("id"),
		Name:       doc.str("name"),
		Role:       doc.str("role"),
		Contact:    doc.str("contact"),
		Email:      doc.str("email"),
		DateJoined: doc.date("dateJoined", "date_joined"),
		IsActive:   doc.boolean("isActive", "is_active"),
	}
	return nil
}

func (l *StaffLog) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*l = StaffLog{
		ID:        doc.str("id"),
		StaffID:   doc.str("staffId", "staff_id"),
		StaffName: doc.str("staffName", "staff_name"),
		Role:      doc.str("role"),
		Date:      doc.str("date"),
		TimeIn:    doc.str("timeIn", "time_in"),
		TimeOut:   doc.str("timeOut", "time_out"),
		Duties:    doc.str("duties"),
		Notes:     doc.str("notes"),
		IsPresent: doc.boolean("isPresent", "is_present"),
	}
	return nil
}
