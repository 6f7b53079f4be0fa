package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/komendev/vocabbot/internal/domain/entities"
	"github.com/komendev/vocabbot/internal/infra/postgres/repository"
)

type fakeWordRepo struct {
	mu     sync.Mutex
	words  map[string]entities.Word
	nextID int64
}

func newFakeWordRepo() *fakeWordRepo {
	return &fakeWordRepo{words: make(map[string]entities.Word)}
}

func (r *fakeWordRepo) InsertIfAbsent(_ context.Context, text string, knowledge entities.WordKnowledge) (*entities.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.words[text]; ok {
		return &w, nil
	}

	r.nextID++
	w := entities.Word{ID: r.nextID, Text: text, Knowledge: knowledge, CreatedAt: time.Now()}
	r.words[text] = w
	return &w, nil
}

func (r *fakeWordRepo) GetByText(_ context.Context, text string) (*entities.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.words[text]
	if !ok {
		return nil, repository.ErrWordNotFound
	}
	return &w, nil
}

type fakeUserRepo struct {
	users  map[int64]entities.User
	cycles map[int64]entities.ReminderCycle
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int64]entities.User),
		cycles: make(map[int64]entities.ReminderCycle),
	}
}

func (r *fakeUserRepo) Save(_ context.Context, user *entities.User) (bool, error) {
	_, existed := r.users[user.ChatID]
	u := *user
	u.IsActive = true
	r.users[user.ChatID] = u
	if !existed {
		r.cycles[user.ChatID] = entities.DefaultReminderCycle()
	}
	return !existed, nil
}

func (r *fakeUserRepo) GetActive(_ context.Context) ([]entities.User, error) {
	var users []entities.User
	for _, u := range r.users {
		if u.IsActive {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ChatID < users[j].ChatID })
	return users, nil
}

func (r *fakeUserRepo) Deactivate(_ context.Context, chatID int64) error {
	u, ok := r.users[chatID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsActive = false
	r.users[chatID] = u
	return nil
}

func (r *fakeUserRepo) GetReminderCycle(_ context.Context, chatID int64) (entities.ReminderCycle, error) {
	cycle, ok := r.cycles[chatID]
	if !ok {
		return cycle, repository.ErrNoReminderCycle
	}
	return cycle, nil
}

func (r *fakeUserRepo) SetReminderCycle(_ context.Context, chatID int64, cycle entities.ReminderCycle) error {
	if _, ok := r.users[chatID]; !ok {
		return repository.ErrUserNotFound
	}
	r.cycles[chatID] = cycle
	return nil
}

type fakeEnrollmentRepo struct {
	wordsByID map[int64]entities.Word
	touched   map[int64]map[int64]time.Time // chat -> word -> last encounter
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		wordsByID: make(map[int64]entities.Word),
		touched:   make(map[int64]map[int64]time.Time),
	}
}

func (r *fakeEnrollmentRepo) addWord(w entities.Word) {
	r.wordsByID[w.ID] = w
}

func (r *fakeEnrollmentRepo) Upsert(_ context.Context, chatID, wordID int64, touchedAt time.Time) error {
	if r.touched[chatID] == nil {
		r.touched[chatID] = make(map[int64]time.Time)
	}
	r.touched[chatID][wordID] = touchedAt
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, chatID int64, text string) error {
	for id, w := range r.wordsByID {
		if w.Text != text {
			continue
		}
		if _, ok := r.touched[chatID][id]; ok {
			delete(r.touched[chatID], id)
			return nil
		}
	}
	return repository.ErrEnrollmentNotFound
}

func (r *fakeEnrollmentRepo) WordsTouchedOn(_ context.Context, chatID int64, dates []time.Time) ([]entities.Word, error) {
	wanted := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		wanted[entities.DateUTC(d)] = struct{}{}
	}

	var words []entities.Word
	for id, at := range r.touched[chatID] {
		if _, ok := wanted[entities.DateUTC(at)]; ok {
			words = append(words, r.wordsByID[id])
		}
	}
	sort.Slice(words, func(i, j int) bool { return words[i].ID < words[j].ID })
	return words, nil
}

func (r *fakeEnrollmentRepo) WordsTouchedSince(_ context.Context, chatID int64, since time.Time) ([]entities.Word, error) {
	var words []entities.Word
	for id, at := range r.touched[chatID] {
		if !at.Before(since) {
			words = append(words, r.wordsByID[id])
		}
	}
	sort.Slice(words, func(i, j int) bool { return words[i].ID < words[j].ID })
	return words, nil
}

func (r *fakeEnrollmentRepo) AllWords(_ context.Context, chatID int64) ([]entities.Word, error) {
	var words []entities.Word
	for id := range r.touched[chatID] {
		words = append(words, r.wordsByID[id])
	}
	sort.Slice(words, func(i, j int) bool { return words[i].ID < words[j].ID })
	return words, nil
}

func (r *fakeEnrollmentRepo) TouchedDates(_ context.Context, chatID int64) ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	for _, at := range r.touched[chatID] {
		seen[entities.DateUTC(at)] = struct{}{}
	}

	var dates []time.Time
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

type fakeProvider struct {
	mu        sync.Mutex
	knowledge map[string]entities.WordKnowledge
	errs      []error // consumed one per call before knowledge is served
	calls     int
	gate      chan struct{} // when set, Lookup blocks until it is closed
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{knowledge: make(map[string]entities.WordKnowledge)}
}

func (p *fakeProvider) Lookup(_ context.Context, word string) (entities.WordKnowledge, error) {
	p.mu.Lock()
	p.calls++
	var err error
	if len(p.errs) > 0 {
		err, p.errs = p.errs[0], p.errs[1:]
	}
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return entities.WordKnowledge{}, err
	}
	return p.knowledge[word], nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
