package disposal

import (
	"sort"
	"strings"

	"ewms/internal/models"
)

// PageSizes are the selectable list page sizes.
var PageSizes = []int{5, 10, 25}

// Query describes one immutable view over a fetched request list: status
// filter, substring search, sort key/direction and pagination. Zero value
// means no filter, created_at descending, first page of 10.
type Query struct {
	Status   string
	Search   string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// Apply runs the filter→search→sort→paginate pipeline over the full result
// set in memory and returns the requested page plus the post-filter total.
// The input slice is not modified.
func (q Query) Apply(reqs []models.DisposalRequest) ([]models.DisposalRequest, int) {
	out := make([]models.DisposalRequest, 0, len(reqs))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	for _, r := range reqs {
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if term != "" && !matches(r, term) {
			continue
		}
		out = append(out, r)
	}
	total := len(out)

	sortRequests(out, q.SortBy, q.SortDir)

	size := q.PageSize
	if !validPageSize(size) {
		size = 10
	}
	page := q.Page
	if page < 0 {
		page = 0
	}
	start := page * size
	if start >= total {
		return []models.DisposalRequest{}, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return out[start:end], total
}

func matches(r models.DisposalRequest, term string) bool {
	return strings.Contains(strings.ToLower(r.ID), term) ||
		strings.Contains(strings.ToLower(r.Department), term) ||
		strings.Contains(strings.ToLower(r.EWasteDescription), term)
}

func validPageSize(n int) bool {
	for _, s := range PageSizes {
		if n == s {
			return true
		}
	}
	return false
}

func sortRequests(reqs []models.DisposalRequest, by, dir string) {
	desc := dir != "asc"
	if by == "" {
		by = "created_at"
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		var less bool
		switch by {
		case "status":
			less = reqs[i].Status < reqs[j].Status
		case "department":
			less = reqs[i].Department < reqs[j].Department
		case "weight_kg":
			less = weight(reqs[i]) < weight(reqs[j])
		default: // created_at timestamps sort lexicographically
			less = reqs[i].CreatedAt < reqs[j].CreatedAt
		}
		if desc {
			return !less && !equalKey(reqs[i], reqs[j], by)
		}
		return less
	})
}

func equalKey(a, b models.DisposalRequest, by string) bool {
	switch by {
	case "status":
		return a.Status == b.Status
	case "department":
		return a.Department == b.Department
	case "weight_kg":
		return weight(a) == weight(b)
	default:
		return a.CreatedAt == b.CreatedAt
	}
}

func weight(r models.DisposalRequest) float64 {
	if r.WeightKG == nil {
		return 0
	}
	return *r.WeightKG
}
