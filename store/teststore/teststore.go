// Package teststore provides an in-memory store.Driver with the same
// constraint semantics as the SQL drivers, for use in service tests.
package teststore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/wordfolio/wordfolio/store"
)

// Driver keeps all entities in maps guarded by one mutex. Unique
// constraints, cascades, and compare-and-swap writes behave like the
// SQL drivers so services exercise the same error paths.
type Driver struct {
	mu sync.Mutex

	nextID       int32
	userProfiles map[int32]*store.UserProfile
	words        map[int32]*store.Word
	cards        map[int32]*store.ContentCard
	memberships  map[int32]*store.VocabularyMembership
	graphs       map[int32]*store.InterestGraphRecord
}

var _ store.Driver = (*Driver)(nil)

func NewDriver() *Driver {
	return &Driver{
		userProfiles: map[int32]*store.UserProfile{},
		words:        map[int32]*store.Word{},
		cards:        map[int32]*store.ContentCard{},
		memberships:  map[int32]*store.VocabularyMembership{},
		graphs:       map[int32]*store.InterestGraphRecord{},
	}
}

func (d *Driver) GetDB() *sql.DB { return nil }

func (d *Driver) Close() error { return nil }

func (d *Driver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *Driver) allocateID() int32 {
	d.nextID++
	return d.nextID
}

// UserProfile model related methods.

func (d *Driver) UpsertUserProfile(_ context.Context, upsert *store.UpsertUserProfile) (*store.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().Unix()
	userProfile, ok := d.userProfiles[upsert.UserID]
	if !ok {
		userProfile = &store.UserProfile{UserID: upsert.UserID, CreatedTs: now}
		d.userProfiles[upsert.UserID] = userProfile
	}
	userProfile.Nickname = upsert.Nickname
	userProfile.Level = upsert.Level
	userProfile.AgeGroup = upsert.AgeGroup
	userProfile.TargetLanguage = upsert.TargetLanguage
	userProfile.NativeLanguage = upsert.NativeLanguage
	userProfile.UpdatedTs = now

	copied := *userProfile
	return &copied, nil
}

func (d *Driver) GetUserProfile(_ context.Context, find *store.FindUserProfile) (*store.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if find.UserID == nil {
		return nil, nil
	}
	userProfile, ok := d.userProfiles[*find.UserID]
	if !ok {
		return nil, nil
	}
	copied := *userProfile
	return &copied, nil
}

func (d *Driver) DeleteUserProfile(_ context.Context, del *store.DeleteUserProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Cascades like the FK on interest_graph.user_id.
	delete(d.userProfiles, del.UserID)
	delete(d.graphs, del.UserID)
	return nil
}

// Word model related methods.

func (d *Driver) CreateWord(_ context.Context, create *store.Word) (*store.Word, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, word := range d.words {
		if word.Text == create.Text && word.Language == create.Language {
			return nil, store.ErrAlreadyExists
		}
	}

	now := time.Now().Unix()
	word := *create
	word.ID = d.allocateID()
	word.CreatedTs = now
	word.UpdatedTs = now
	d.words[word.ID] = &word

	copied := word
	return &copied, nil
}

func (d *Driver) GetWord(_ context.Context, find *store.FindWord) (*store.Word, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, word := range d.words {
		if find.ID != nil && word.ID != *find.ID {
			continue
		}
		if find.Text != nil && word.Text != *find.Text {
			continue
		}
		if find.Language != nil && word.Language != *find.Language {
			continue
		}
		copied := *word
		return &copied, nil
	}
	return nil, nil
}

func (d *Driver) UpdateWord(_ context.Context, update *store.UpdateWord) (*store.Word, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	word, ok := d.words[update.ID]
	if !ok {
		return nil, nil
	}
	if update.Language != nil {
		word.Language = *update.Language
	}
	word.UpdatedTs = time.Now().Unix()

	copied := *word
	return &copied, nil
}

func (d *Driver) DeleteWord(_ context.Context, del *store.DeleteWord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.words, del.ID)
	for id, card := range d.cards {
		if card.WordID != del.ID {
			continue
		}
		delete(d.cards, id)
		for mid, membership := range d.memberships {
			if membership.CardID == id {
				delete(d.memberships, mid)
			}
		}
	}
	return nil
}

// ContentCard model related methods.

func (d *Driver) CreateContentCard(_ context.Context, create *store.ContentCard) (*store.ContentCard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := create.Key()
	for _, card := range d.cards {
		if card.Key() == key {
			return nil, store.ErrAlreadyExists
		}
	}

	card := *create
	card.ID = d.allocateID()
	card.CreatedTs = time.Now().Unix()
	d.cards[card.ID] = &card

	copied := card
	return &copied, nil
}

func (d *Driver) GetContentCard(_ context.Context, find *store.FindContentCard) (*store.ContentCard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, card := range d.cards {
		if matchCard(card, find) {
			copied := *card
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *Driver) ListContentCards(_ context.Context, find *store.FindContentCard) ([]*store.ContentCard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := []*store.ContentCard{}
	for _, card := range d.cards {
		if matchCard(card, find) {
			copied := *card
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func matchCard(card *store.ContentCard, find *store.FindContentCard) bool {
	if find.ID != nil && card.ID != *find.ID {
		return false
	}
	if find.WordID != nil && card.WordID != *find.WordID {
		return false
	}
	if find.Key != nil && card.Key() != *find.Key {
		return false
	}
	return true
}

// VocabularyMembership model related methods.

func (d *Driver) CreateVocabularyMembership(_ context.Context, create *store.VocabularyMembership) (*store.VocabularyMembership, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, membership := range d.memberships {
		if membership.UserID == create.UserID && membership.CardID == create.CardID {
			return nil, store.ErrAlreadyExists
		}
	}

	now := time.Now().Unix()
	membership := *create
	membership.ID = d.allocateID()
	if membership.Familiarity == 0 {
		membership.Familiarity = store.MinFamiliarity
	}
	membership.AddedTs = now
	membership.UpdatedTs = now
	d.memberships[membership.ID] = &membership

	copied := membership
	return &copied, nil
}

func (d *Driver) GetVocabularyMembership(_ context.Context, find *store.FindVocabularyMembership) (*store.VocabularyMembership, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, membership := range d.memberships {
		if matchMembership(membership, find) {
			copied := *membership
			return &copied, nil
		}
	}
	return nil, nil
}

func (d *Driver) ListVocabularyMemberships(_ context.Context, find *store.FindVocabularyMembership) ([]*store.VocabularyMembership, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := []*store.VocabularyMembership{}
	for _, membership := range d.memberships {
		if matchMembership(membership, find) {
			copied := *membership
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func matchMembership(membership *store.VocabularyMembership, find *store.FindVocabularyMembership) bool {
	if find.ID != nil && membership.ID != *find.ID {
		return false
	}
	if find.UserID != nil && membership.UserID != *find.UserID {
		return false
	}
	if find.CardID != nil && membership.CardID != *find.CardID {
		return false
	}
	return true
}

func (d *Driver) UpdateVocabularyMembership(_ context.Context, update *store.UpdateVocabularyMembership) (*store.VocabularyMembership, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	membership, ok := d.memberships[update.ID]
	if !ok {
		return nil, nil
	}
	if update.Familiarity != nil {
		membership.Familiarity = *update.Familiarity
	}
	membership.UpdatedTs = time.Now().Unix()

	copied := *membership
	return &copied, nil
}

func (d *Driver) DeleteVocabularyMembership(_ context.Context, del *store.DeleteVocabularyMembership) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, membership := range d.memberships {
		if membership.UserID == del.UserID && membership.CardID == del.CardID {
			delete(d.memberships, id)
		}
	}
	return nil
}

// InterestGraph model related methods.

func (d *Driver) GetInterestGraph(_ context.Context, find *store.FindInterestGraph) (*store.InterestGraphRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if find.UserID == nil {
		return nil, nil
	}
	record, ok := d.graphs[*find.UserID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (d *Driver) UpdateInterestGraph(_ context.Context, update *store.UpdateInterestGraph) (*store.InterestGraphRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().Unix()
	record, ok := d.graphs[update.UserID]
	if !ok {
		if update.ExpectedVersion != 0 {
			return nil, store.ErrVersionConflict
		}
		record = &store.InterestGraphRecord{
			UserID:    update.UserID,
			Payload:   update.Payload,
			Version:   1,
			CreatedTs: now,
			UpdatedTs: now,
		}
		d.graphs[update.UserID] = record
		copied := *record
		return &copied, nil
	}

	if record.Version != update.ExpectedVersion {
		return nil, store.ErrVersionConflict
	}
	record.Payload = update.Payload
	record.Version++
	record.UpdatedTs = now

	copied := *record
	return &copied, nil
}

// SeedInterestGraph installs a raw payload for a user, bypassing the
// compare-and-swap path. Useful for corrupt-payload tests.
func (d *Driver) SeedInterestGraph(userID int32, payload string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().Unix()
	d.graphs[userID] = &store.InterestGraphRecord{
		UserID:    userID,
		Payload:   payload,
		Version:   1,
		CreatedTs: now,
		UpdatedTs: now,
	}
}
