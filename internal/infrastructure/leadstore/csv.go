package leadstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
)

// csvHeader is the column layout of the lead log. Order is part of the file
// format; downstream imports rely on it.
var csvHeader = []string{
	"created_at", "lead_id", "name", "email", "company", "phone",
	"room_type", "platform", "notes", "recommendation_json",
}

// CSVStore appends captured leads to a CSV file, standing in for a real CRM
// hand-off. Writes are serialized; the underlying file is append-only.
type CSVStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewCSVStore creates a new CSV-backed lead store
func NewCSVStore(path string) *CSVStore {
	if path == "" {
		path = "leads_demo.csv"
	}
	return &CSVStore{path: path, now: time.Now}
}

// Append assigns the lead its ID and timestamp and writes one CSV row,
// creating the file with a header row on first use.
func (s *CSVStore) Append(lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	lead.CreatedAt = now
	lead.LeadID = fmt.Sprintf("LEAD-%s-%d", now.Format("20060102"), now.Unix())

	if err := s.ensureFile(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLeadStoreFailure, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLeadStoreFailure, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		lead.CreatedAt.Format(time.RFC3339),
		lead.LeadID,
		lead.Name,
		lead.Email,
		lead.Company,
		lead.Phone,
		lead.RoomType,
		lead.Platform,
		lead.Notes,
		lead.RecommendationJSON,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLeadStoreFailure, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLeadStoreFailure, err)
	}

	logrus.Infof("[LEADS] appended %s for %s", lead.LeadID, lead.Email)
	return nil
}

// ensureFile writes the header row when the log does not exist yet.
func (s *CSVStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
