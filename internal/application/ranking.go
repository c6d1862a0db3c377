package application

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bnema/fireteam-cli/internal/domain"
)

const DefaultPageSize = 100

type SortMode string

const (
	SortByCompletion   SortMode = "completion"
	SortByTimeToFinish SortMode = "time"
)

func ParseSortMode(raw string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortByCompletion:
		return SortByCompletion, nil
	case SortByTimeToFinish, "ttf":
		return SortByTimeToFinish, nil
	default:
		return "", fmt.Errorf("unsupported sort mode %q", raw)
	}
}

type ViewOptions struct {
	Group         domain.GroupID
	Search        string
	HideCompleted bool
	Sort          SortMode
	Mode          domain.CompletionMode
	// Pin floats one record to the top regardless of sort.
	Pin uint32
}

func (o ViewOptions) normalized() ViewOptions {
	if o.Group == "" {
		o.Group = domain.GroupAll
	}
	if o.Sort == "" {
		o.Sort = SortByCompletion
	}
	if o.Mode == "" {
		o.Mode = domain.CompletionAverage
	}
	return o
}

type Page struct {
	Group   domain.GroupID
	Name    string
	Records []domain.ScoreResult
	// Total counts matching records before the window is applied.
	Total   int
	HasMore bool
}

// View groups, filters, sorts and windows scored records. limit <= 0 returns
// every matching record.
func View(catalog domain.Catalog, scores []domain.ScoreResult, opts ViewOptions, limit int) (Page, error) {
	opts = opts.normalized()
	index := indexScores(scores)

	name, members, err := groupMembers(catalog, index, opts.Group)
	if err != nil {
		return Page{}, err
	}

	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	list := make([]domain.ScoreResult, 0, len(members))
	for _, record := range members {
		result := scoreFor(index, record)
		if needle != "" && !strings.Contains(strings.ToLower(record.Name), needle) {
			continue
		}
		if opts.HideCompleted && result.Completed() {
			continue
		}
		list = append(list, result)
	}

	switch opts.Sort {
	case SortByTimeToFinish:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].TimeToFinish < list[j].TimeToFinish
		})
	default:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CompletionScore > list[j].CompletionScore
		})
	}

	if opts.Pin != 0 {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Record.Hash == opts.Pin && list[j].Record.Hash != opts.Pin
		})
	}

	page := Page{Group: opts.Group, Name: name, Total: len(list)}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
		page.HasMore = true
	}
	page.Records = list

	return page, nil
}

func groupMembers(catalog domain.Catalog, index map[uint32]domain.ScoreResult, id domain.GroupID) (string, []domain.RecordDefinition, error) {
	switch id {
	case domain.GroupAll:
		return "All Triumphs", catalog.Records, nil
	case domain.GroupNearlyDone:
		return "Nearly Done", nearlyDone(catalog, index), nil
	}

	group, ok := catalog.Group(id)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", domain.ErrUnknownGroup, id)
	}
	return group.Name, group.Members, nil
}

func nearlyDone(catalog domain.Catalog, index map[uint32]domain.ScoreResult) []domain.RecordDefinition {
	var records []domain.RecordDefinition
	for _, record := range catalog.Records {
		if scoreFor(index, record).NearlyDone() {
			records = append(records, record)
		}
	}
	return records
}

type GroupSummary struct {
	ID        domain.GroupID
	Name      string
	Count     int
	MeanScore float64
}

// GroupSummaries lists All first, Nearly Done second when it has records, then
// declared groups by mean completion score, highest first.
func GroupSummaries(catalog domain.Catalog, scores []domain.ScoreResult) []GroupSummary {
	index := indexScores(scores)

	summaries := []GroupSummary{summarize(domain.GroupAll, "All", catalog.Records, index)}
	if records := nearlyDone(catalog, index); len(records) > 0 {
		summaries = append(summaries, summarize(domain.GroupNearlyDone, "Nearly Done", records, index))
	}

	rest := make([]GroupSummary, 0, len(catalog.Groups))
	for _, group := range catalog.Groups {
		rest = append(rest, summarize(group.ID, group.Name, group.Members, index))
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].MeanScore > rest[j].MeanScore
	})

	return append(summaries, rest...)
}

// GroupOf returns the declaring group of a record.
func GroupOf(catalog domain.Catalog, hash uint32) (domain.GroupID, bool) {
	record, ok := catalog.Record(hash)
	if !ok || record.GroupID == "" {
		return "", false
	}
	return record.GroupID, true
}

func summarize(id domain.GroupID, name string, records []domain.RecordDefinition, index map[uint32]domain.ScoreResult) GroupSummary {
	total := 0.0
	for _, record := range records {
		total += scoreFor(index, record).CompletionScore
	}

	return GroupSummary{
		ID:        id,
		Name:      name,
		Count:     len(records),
		MeanScore: total / math.Max(float64(len(records)), 1),
	}
}

func indexScores(scores []domain.ScoreResult) map[uint32]domain.ScoreResult {
	index := make(map[uint32]domain.ScoreResult, len(scores))
	for _, score := range scores {
		index[score.Record.Hash] = score
	}
	return index
}

// scoreFor falls back to an empty-sample result for records not scored yet.
func scoreFor(index map[uint32]domain.ScoreResult, record domain.RecordDefinition) domain.ScoreResult {
	if result, ok := index[record.Hash]; ok {
		return result
	}
	return ScoreRecord(nil, record, domain.CompletionAverage)
}

// ViewState tracks the options and visible window of one presentation view.
// Changing any option resets the window to the first page; LoadMore only grows it.
type ViewState struct {
	opts     ViewOptions
	pageSize int
	visible  int
}

func NewViewState(pageSize int) *ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ViewState{
		opts:     ViewOptions{}.normalized(),
		pageSize: pageSize,
		visible:  pageSize,
	}
}

func (v *ViewState) Options() ViewOptions {
	return v.opts
}

func (v *ViewState) Visible() int {
	return v.visible
}

// Apply replaces the options, resetting the window when they differ.
func (v *ViewState) Apply(opts ViewOptions) {
	opts = opts.normalized()
	if opts == v.opts {
		return
	}
	v.opts = opts
	v.visible = v.pageSize
}

func (v *ViewState) LoadMore() {
	v.visible += v.pageSize
}

func (v *ViewState) Page(catalog domain.Catalog, scores []domain.ScoreResult) (Page, error) {
	return View(catalog, scores, v.opts, v.visible)
}
