package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "raceseries/internal/errors"
)

// Registry holds the loaded membership roster, keyed by member identifier,
// plus an optional table of name corrections mapping race-result names to
// roster names.
type Registry struct {
	byID            map[string]*Member
	ordered         []*Member
	nameCorrections map[string]string
	validate        *validator.Validate
	logger          *slog.Logger
}

// NewRegistry creates an empty member registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byID:            make(map[string]*Member),
		nameCorrections: make(map[string]string),
		validate:        validator.New(),
		logger:          logger,
	}
}

// LoadCSV loads members from a roster CSV file. Expected header columns:
// member_id, first_name, last_name, email, age, gender. Rows missing
// required fields and duplicate member IDs fail the load; the roster is a
// structural input and is never partially accepted.
func (r *Registry) LoadCSV(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return apperrors.NewInputError("failed to open roster file", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	if err := r.load(f, filePath); err != nil {
		return err
	}

	r.logger.Info("roster loaded",
		slog.String("file", filePath),
		slog.Int("member_count", len(r.ordered)))

	return nil
}

func (r *Registry) load(reader io.Reader, filePath string) error {
	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return apperrors.NewInputError("failed to read roster header", err).
			WithContext("file", filePath)
	}

	cols := columnIndex(header)
	for _, required := range []string{"member_id", "first_name", "last_name"} {
		if _, ok := cols[required]; !ok {
			return apperrors.NewInputError(
				fmt.Sprintf("roster file missing required column %q", required), nil).
				WithContext("file", filePath)
		}
	}

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return apperrors.NewInputError("failed to read roster row", err).
				WithContext("file", filePath)
		}
		line++

		member, err := parseMember(row, cols)
		if err != nil {
			return apperrors.NewInputError(
				fmt.Sprintf("invalid roster row %d", line), err).
				WithContext("file", filePath)
		}

		if err := r.validate.Struct(member); err != nil {
			return apperrors.NewValidationError(
				fmt.Sprintf("roster row %d failed validation", line), err).
				WithContext("file", filePath)
		}

		if err := r.Add(member); err != nil {
			if appErr, ok := err.(*apperrors.AppError); ok {
				return appErr.WithContext("file", filePath)
			}
			return err
		}
	}

	return nil
}

// Add inserts a member, rejecting duplicate identifiers
func (r *Registry) Add(member *Member) error {
	if _, exists := r.byID[member.MemberID]; exists {
		return apperrors.DuplicateMemberIDError(member.MemberID)
	}
	r.byID[member.MemberID] = member
	r.ordered = append(r.ordered, member)
	return nil
}

func parseMember(row []string, cols map[string]int) (*Member, error) {
	get := func(name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	member := &Member{
		MemberID:  get("member_id"),
		FirstName: get("first_name"),
		LastName:  get("last_name"),
		Email:     get("email"),
		Gender:    strings.ToUpper(get("gender")),
	}

	if ageStr := get("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid age %q: %w", ageStr, err)
		}
		member.Age = age
	}

	return member, nil
}

// LoadNameCorrections loads a CSV mapping race-result names to roster names.
// Format: race_name,member_name. Corrections are consulted by the matching
// engine before any fuzzy comparison.
func (r *Registry) LoadNameCorrections(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return apperrors.NewInputError("failed to open name corrections file", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return apperrors.NewInputError("failed to read name corrections header", err).
			WithContext("file", filePath)
	}
	cols := columnIndex(header)

	count := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return apperrors.NewInputError("failed to read name corrections row", err).
				WithContext("file", filePath)
		}

		get := func(name string) string {
			if idx, ok := cols[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		raceName := get("race_name")
		memberName := get("member_name")
		if raceName == "" || memberName == "" {
			continue
		}

		r.AddNameCorrection(raceName, memberName)
		count++
	}

	r.logger.Info("name corrections loaded",
		slog.String("file", filePath),
		slog.Int("count", count))

	return nil
}

// AddNameCorrection registers a mapping from a race-result name to a roster
// name. Keys are stored lowercased for case-insensitive lookup.
func (r *Registry) AddNameCorrection(raceName, memberName string) {
	r.nameCorrections[strings.ToLower(strings.TrimSpace(raceName))] = memberName
}

// CorrectedName returns the roster name a race-result name maps to, if a
// correction exists.
func (r *Registry) CorrectedName(raceName string) (string, bool) {
	name, ok := r.nameCorrections[strings.ToLower(strings.TrimSpace(raceName))]
	return name, ok
}

// GetByID returns the member with the given identifier
func (r *Registry) GetByID(memberID string) (*Member, bool) {
	m, ok := r.byID[memberID]
	return m, ok
}

// FindByFullName returns the member whose "First Last" name equals the given
// name, compared case-insensitively.
func (r *Registry) FindByFullName(name string) (*Member, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, m := range r.ordered {
		if strings.ToLower(m.FullName()) == target {
			return m, true
		}
	}
	return nil, false
}

// All returns every member in a stable order sorted by member ID
func (r *Registry) All() []*Member {
	members := make([]*Member, len(r.ordered))
	copy(members, r.ordered)
	sort.Slice(members, func(i, j int) bool {
		return members[i].MemberID < members[j].MemberID
	})
	return members
}

// Len returns the number of loaded members
func (r *Registry) Len() int {
	return len(r.byID)
}

// columnIndex maps lowercased header names to their positions
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}
