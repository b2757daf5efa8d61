package dto

import "github.com/noah-isme/sma-finance-mirror/internal/models"

// StaffLogQuery filters the attendance log of one day.
type StaffLogQuery struct {
	Date    string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Search  string `form:"search" validate:"omitempty,max=100"`
	Role    string `form:"role" validate:"omitempty,max=64"`
	StaffID string `form:"staffId" validate:"omitempty,max=64"`
}

// StaffRoleGroup holds the filtered logs of one role.
type StaffRoleGroup struct {
	Role string            `json:"role"`
	Logs []models.StaffLog `json:"logs"`
}

// StaffStats counts attendance for the day.
type StaffStats struct {
	TotalStaff   int `json:"totalStaff"`
	PresentToday int `json:"presentToday"`
	AbsentToday  int `json:"absentToday"`
}

// StaffLogReport is the attendance view of one day.
type StaffLogReport struct {
	Date         string            `json:"date"`
	Logs         []models.StaffLog `json:"logs"`
	Groups       []StaffRoleGroup  `json:"groups"`
	Absent       []models.Staff    `json:"absentStaff"`
	DeletedStaff []models.Staff    `json:"deletedStaff"`
	Stats        StaffStats        `json:"stats"`
}
