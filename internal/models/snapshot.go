package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collection names an upstream collection mirrored by the service.
type Collection string

const (
	CollectionStudents            Collection = "students"
	CollectionSettings            Collection = "settings"
	CollectionOutstandingStudents Collection = "outstandingStudents"
	CollectionExpenses            Collection = "expenses"
	CollectionExtraBilling        Collection = "extraBilling"
	CollectionInventories         Collection = "inventories"
	CollectionSales               Collection = "sales"
	CollectionStaff               Collection = "staff"
	CollectionDeletedStaff        Collection = "deletedStaff"
	CollectionStaffLogs           Collection = "staffLogs"
)

// AllCollections lists every mirrored collection in load order.
var AllCollections = []Collection{
	CollectionSettings,
	CollectionStudents,
	CollectionOutstandingStudents,
	CollectionExpenses,
	CollectionExtraBilling,
	CollectionInventories,
	CollectionSales,
	CollectionStaff,
	CollectionDeletedStaff,
	CollectionStaffLogs,
}

// ParseCollection validates a collection name received from the change feed.
func ParseCollection(raw string) (Collection, error) {
	for _, c := range AllCollections {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", raw)
}

// Snapshot is an immutable view of every mirrored collection. A reload builds a
// new Snapshot; readers must never mutate the slices they receive.
type Snapshot struct {
	// Epoch identifies the process that built the snapshot; Version only
	// orders snapshots within one epoch.
	Epoch               string               `json:"epoch,omitempty"`
	Version             int64                `json:"version"`
	LoadedAt            time.Time            `json:"loadedAt"`
	Loaded              map[Collection]bool  `json:"-"`
	Settings            AppSettings          `json:"settings"`
	Students            []Student            `json:"students"`
	OutstandingStudents []OutstandingStudent `json:"outstandingStudents"`
	Expenses            []Expense            `json:"expenses"`
	ExtraBilling        []ExtraBilling       `json:"extraBilling"`
	Inventories         []Inventory          `json:"inventories"`
	Sales               []SaleRecord         `json:"sales"`
	Staff               []Staff              `json:"staff"`
	DeletedStaff        []Staff              `json:"deletedStaff"`
	StaffLogs           []StaffLog           `json:"staffLogs"`
}

// NewSnapshot returns an empty snapshot with default settings.
func NewSnapshot() *Snapshot {
	return &Snapshot{Settings: DefaultSettings(), Loaded: map[Collection]bool{}}
}

// Clone copies the snapshot header. Collection slices are shared because they
// are replaced wholesale, never modified in place.
func (s *Snapshot) Clone() *Snapshot {
	clone := *s
	clone.Loaded = make(map[Collection]bool, len(s.Loaded))
	for k, v := range s.Loaded {
		clone.Loaded[k] = v
	}
	return &clone
}

// Ready reports whether every collection has been loaded at least once.
func (s *Snapshot) Ready() bool {
	for _, c := range AllCollections {
		if !s.Loaded[c] {
			return false
		}
	}
	return true
}

// Count returns the number of documents held for a collection.
func (s *Snapshot) Count(c Collection) int {
	switch c {
	case CollectionStudents:
		return len(s.Students)
	case CollectionSettings:
		if s.Loaded[CollectionSettings] {
			return 1
		}
		return 0
	case CollectionOutstandingStudents:
		return len(s.OutstandingStudents)
	case CollectionExpenses:
		return len(s.Expenses)
	case CollectionExtraBilling:
		return len(s.ExtraBilling)
	case CollectionInventories:
		return len(s.Inventories)
	case CollectionSales:
		return len(s.Sales)
	case CollectionStaff:
		return len(s.Staff)
	case CollectionDeletedStaff:
		return len(s.DeletedStaff)
	case CollectionStaffLogs:
		return len(s.StaffLogs)
	default:
		return 0
	}
}

// Apply decodes the documents of one collection into the snapshot, replacing
// whatever it held before. Documents that fail to decode are returned as
// skipped and do not abort the collection.
func (s *Snapshot) Apply(c Collection, docs []Document) (skipped []string) {
	switch c {
	case CollectionSettings:
		s.Settings = DefaultSettings()
		// The desktop app stores a single settings document; the newest wins.
		var newest time.Time
		for _, doc := range docs {
			var settings AppSettings
			if err := decodeInto(doc, &settings); err != nil {
				skipped = append(skipped, doc.ID)
				continue
			}
			if newest.IsZero() || !doc.UpdatedAt.Before(newest) {
				newest = doc.UpdatedAt
				if settings.ClassGroups == nil {
					settings.ClassGroups = ClassGroups{}
				}
				s.Settings = settings
			}
		}
	case CollectionStudents:
		s.Students, skipped = decodeAll[Student](docs, func(v *Student, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionOutstandingStudents:
		s.OutstandingStudents, skipped = decodeAll[OutstandingStudent](docs, func(v *OutstandingStudent, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionExpenses:
		s.Expenses, skipped = decodeAll[Expense](docs, func(v *Expense, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionExtraBilling:
		s.ExtraBilling, skipped = decodeAll[ExtraBilling](docs, func(v *ExtraBilling, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionInventories:
		s.Inventories, skipped = decodeAll[Inventory](docs, func(v *Inventory, id string) {
			if v.InventoryName == "" {
				v.InventoryName = id
			}
		})
	case CollectionSales:
		s.Sales, skipped = decodeAll[SaleRecord](docs, func(v *SaleRecord, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionStaff:
		s.Staff, skipped = decodeAll[Staff](docs, func(v *Staff, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionDeletedStaff:
		s.DeletedStaff, skipped = decodeAll[Staff](docs, func(v *Staff, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	case CollectionStaffLogs:
		s.StaffLogs, skipped = decodeAll[StaffLog](docs, func(v *StaffLog, id string) {
			if v.ID == "" {
				v.ID = id
			}
		})
	default:
		return nil
	}
	if s.Loaded == nil {
		s.Loaded = map[Collection]bool{}
	}
	s.Loaded[c] = true
	return skipped
}

func decodeInto(doc Document, target any) error {
	if len(doc.Payload) == 0 {
		return fmt.Errorf("document %s: empty payload", doc.ID)
	}
	if err := json.Unmarshal(doc.Payload, target); err != nil {
		return fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return nil
}

func decodeAll[T any](docs []Document, withID func(*T, string)) ([]T, []string) {
	items := make([]T, 0, len(docs))
	var skipped []string
	for _, doc := range docs {
		var item T
		if err := decodeInto(doc, &item); err != nil {
			skipped = append(skipped, doc.ID)
			continue
		}
		withID(&item, doc.ID)
		items = append(items, item)
	}
	return items, skipped
}
