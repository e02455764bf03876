package textproc

import (
	"strings"

	"github.com/pwojcik-dev/orderscan/internal/entity"
)

// Aggregate merges runs of same-category classified lines into semantic
// groups. A new group starts when the category changes or a same-category
// continuation rule signals a break (an address whose subtype flips mid-run).
// Group confidence is the arithmetic mean of the member confidences; the
// in-progress group is flushed at end of input.
func Aggregate(lines []entity.ClassifiedLine) []entity.SemanticGroup {
	var groups []entity.SemanticGroup
	var cur *aggState

	for _, cl := range lines {
		if cl.Text == "" {
			continue
		}
		if cur == nil || cur.category != cl.Category || breaksRun(cur, cl) {
			if cur != nil {
				groups = append(groups, cur.close())
			}
			cur = newAggState(cl)
			continue
		}
		cur.append(cl)
	}
	if cur != nil {
		groups = append(groups, cur.close())
	}
	return groups
}

// breaksRun reports whether a same-category line still starts a new group.
func breaksRun(cur *aggState, cl entity.ClassifiedLine) bool {
	return cur.category == entity.CatDeliveryAddress &&
		cl.Category == entity.CatDeliveryAddress &&
		cur.subtype != cl.Subtype
}

// aggState accumulates one group. A group never closes with zero lines, so
// the mean in close is always well defined.
type aggState struct {
	category entity.LineCategory
	subtype  string
	texts    []string
	confSum  float64
	count    int
	props    map[string]string
}

func newAggState(cl entity.ClassifiedLine) *aggState {
	props := map[string]string{}
	for k, v := range cl.Properties {
		props[k] = v
	}
	return &aggState{
		category: cl.Category,
		subtype:  cl.Subtype,
		texts:    []string{cl.Text},
		confSum:  cl.Confidence,
		count:    1,
		props:    props,
	}
}

func (a *aggState) append(cl entity.ClassifiedLine) {
	a.texts = append(a.texts, cl.Text)
	a.confSum += cl.Confidence
	a.count++
	for k, v := range cl.Properties {
		a.props[k] = v
	}
}

func (a *aggState) close() entity.SemanticGroup {
	return entity.SemanticGroup{
		Type:       a.category,
		Subtype:    a.subtype,
		Text:       strings.Join(a.texts, "\n"),
		Confidence: a.confSum / float64(a.count),
		Properties: a.props,
	}
}
