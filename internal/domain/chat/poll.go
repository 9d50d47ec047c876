package chat

import (
	"fmt"
	"sort"
	"time"

	"neighborhood/backend/internal/utils"
)

const (
	minPollOptions = 2
	maxPollOptions = 10
)

// Poll lives at chatRooms/{roomId}/polls/{id}. Votes maps uid to the chosen
// option indexes and is tallied on read.
type Poll struct {
	ID        string           `firestore:"-" json:"id"`
	Title     string           `firestore:"title" json:"title"`
	Options   []string         `firestore:"options" json:"options"`
	Votes     map[string][]int `firestore:"votes" json:"-"`
	Deadline  *time.Time       `firestore:"deadline" json:"deadline,omitempty"`
	Multiple  bool             `firestore:"multiple" json:"multiple"`
	Anonymous bool             `firestore:"anonymous" json:"anonymous"`
	Closed    bool             `firestore:"closed" json:"closed"`
	CreatedBy string           `firestore:"createdBy" json:"createdBy"`
	CreatedAt time.Time        `firestore:"createdAt" json:"createdAt"`
}

type CreatePollInput struct {
	Title     string     `json:"title"`
	Options   []string   `json:"options"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Multiple  bool       `json:"multiple"`
	Anonymous bool       `json:"anonymous"`
}

func (in *CreatePollInput) Clean(now time.Time) error {
	in.Title = utils.NormalizeText(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrBadRequest)
	}
	opts := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		o = utils.NormalizeText(o)
		if o == "" {
			return fmt.Errorf("%w: options must not be empty", ErrBadRequest)
		}
		if utils.ContainsString(opts, o) {
			return fmt.Errorf("%w: duplicate option %q", ErrBadRequest, o)
		}
		opts = append(opts, o)
	}
	if len(opts) < minPollOptions || len(opts) > maxPollOptions {
		return fmt.Errorf("%w: a poll needs %d to %d options", ErrBadRequest, minPollOptions, maxPollOptions)
	}
	in.Options = opts
	if in.Deadline != nil && !in.Deadline.After(now) {
		return fmt.Errorf("%w: deadline must be in the future", ErrBadRequest)
	}
	return nil
}

// Open reports whether votes are accepted at now.
func (p Poll) Open(now time.Time) bool {
	if p.Closed {
		return false
	}
	return p.Deadline == nil || now.Before(*p.Deadline)
}

// Vote replaces uid's selection. An empty selection withdraws the vote.
func (p *Poll) Vote(uid string, selection []int, now time.Time) error {
	if !p.Open(now) {
		return ErrClosed
	}
	if !p.Multiple && len(selection) > 1 {
		return fmt.Errorf("%w: this poll allows a single choice", ErrBadRequest)
	}
	seen := map[int]bool{}
	picked := make([]int, 0, len(selection))
	for _, idx := range selection {
		if idx < 0 || idx >= len(p.Options) {
			return fmt.Errorf("%w: option %d is out of range", ErrBadRequest, idx)
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		picked = append(picked, idx)
	}
	sort.Ints(picked)
	if p.Votes == nil {
		p.Votes = map[string][]int{}
	}
	if len(picked) == 0 {
		delete(p.Votes, uid)
		return nil
	}
	p.Votes[uid] = picked
	return nil
}

// PollResult is a poll with its tally as seen by one viewer.
type PollResult struct {
	Poll
	Counts []int `json:"counts"`
	// Voters per option; omitted for anonymous polls.
	Voters      [][]string `json:"voters,omitempty"`
	TotalVoters int        `json:"totalVoters"`
	MyVote      []int      `json:"myVote"`
	IsOpen      bool       `json:"open"`
}

func (p Poll) Tally(viewer string, now time.Time) PollResult {
	res := PollResult{
		Poll:        p,
		Counts:      make([]int, len(p.Options)),
		TotalVoters: len(p.Votes),
		MyVote:      []int{},
		IsOpen:      p.Open(now),
	}
	if !p.Anonymous {
		res.Voters = make([][]string, len(p.Options))
		for i := range res.Voters {
			res.Voters[i] = []string{}
		}
	}
	uids := make([]string, 0, len(p.Votes))
	for uid := range p.Votes {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	for _, uid := range uids {
		for _, idx := range p.Votes[uid] {
			if idx < 0 || idx >= len(p.Options) {
				continue
			}
			res.Counts[idx]++
			if res.Voters != nil {
				res.Voters[idx] = append(res.Voters[idx], uid)
			}
		}
	}
	if mine, ok := p.Votes[viewer]; ok {
		res.MyVote = mine
	}
	return res
}
