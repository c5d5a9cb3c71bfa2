// Package transfer pairs opposite-signed transfer records that
// represent the two legs of one internal money movement. Pairing is
// greedy nearest-neighbor in time, deterministic by construction, and
// never forms a group of more than two records.
package transfer

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bankpoke/internal/core"
)

// DefaultWindow bounds how far apart in time two legs may be.
const DefaultWindow = 5 * time.Minute

// Group confidence for audit: a dictionary hit on either leg raises
// it, a miss lowers it but does not block pairing.
const (
	confidenceDictionaryHit  = 0.9
	confidenceDictionaryMiss = 0.6
)

// DefaultDictionary lists known self-transfer phrases.
func DefaultDictionary() []string {
	return []string{
		"세이프박스",
		"내계좌로 이체",
		"내 계좌",
		"동전 모으기",
		"저금통",
		"카드잔액 자동충전",
	}
}

// Pairer matches transfer candidates inside a time window.
type Pairer struct {
	Window     time.Duration
	Dictionary []string
}

func New(window time.Duration, dictionary []string) *Pairer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Pairer{Window: window, Dictionary: dictionary}
}

// Pair scans candidates (new batch rows plus existing unmatched
// records) and returns the formed groups together with every touched
// candidate: paired records carry the group id and a cleared review
// flag, the rest stay flagged for manual review.
//
// Candidates are processed in ascending occurred_at order, ties by
// ascending id; each unmatched candidate takes its nearest-in-time
// eligible partner. With three or more mutually eligible records the
// earliest two pair first and the remainder is re-evaluated.
func (p *Pairer) Pair(candidates []core.Transaction) ([]core.TransferGroup, []core.Transaction) {
	pool := make([]core.Transaction, 0, len(candidates))
	for _, c := range candidates {
		if c.Type == core.TypeTransfer && !c.IsPaired() {
			pool = append(pool, c)
		}
	}
	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].OccurredAt.Equal(pool[j].OccurredAt) {
			return pool[i].OccurredAt.Before(pool[j].OccurredAt)
		}
		return pool[i].ID < pool[j].ID
	})

	var groups []core.TransferGroup
	used := make(map[int64]bool, len(pool))

	for i := range pool {
		left := &pool[i]
		if used[left.ID] {
			continue
		}

		best := -1
		var bestGap time.Duration
		for j := range pool {
			if j == i {
				continue
			}
			right := &pool[j]
			if used[right.ID] || !eligible(*left, *right, p.Window) {
				continue
			}
			gap := absGap(left.OccurredAt, right.OccurredAt)
			if best == -1 || gap < bestGap || (gap == bestGap && right.ID < pool[best].ID) {
				best = j
				bestGap = gap
			}
		}
		if best == -1 {
			continue
		}

		right := &pool[best]
		hit := p.dictionaryHit(*left) || p.dictionaryHit(*right)
		confidence := confidenceDictionaryMiss
		if hit {
			confidence = confidenceDictionaryHit
		}

		groupID := uuid.NewString()
		left.TransferGroupID = groupID
		left.ReviewRequired = false
		right.TransferGroupID = groupID
		right.ReviewRequired = false
		used[left.ID] = true
		used[right.ID] = true

		groups = append(groups, core.TransferGroup{
			ID:            groupID,
			LeftID:        left.ID,
			RightID:       right.ID,
			DictionaryHit: hit,
			Confidence:    confidence,
		})
	}

	var unmatched []core.Transaction
	for _, c := range pool {
		if !used[c.ID] {
			unmatched = append(unmatched, c)
		}
	}
	return groups, unmatched
}

// eligible reports whether a and b can form a pair: same currency,
// equal nonzero absolute amount, opposite sign, within the window.
func eligible(a, b core.Transaction, window time.Duration) bool {
	if a.Currency != b.Currency {
		return false
	}
	if a.SignedAmount == 0 || a.SignedAmount != -b.SignedAmount {
		return false
	}
	return absGap(a.OccurredAt, b.OccurredAt) <= window
}

func (p *Pairer) dictionaryHit(tx core.Transaction) bool {
	for _, phrase := range p.Dictionary {
		if phrase == "" {
			continue
		}
		if strings.Contains(tx.Merchant, phrase) || strings.Contains(tx.Method, phrase) {
			return true
		}
	}
	return false
}

func absGap(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
