package user

import "context"

// NameFinder resolves user IDs to display names. It satisfies the audit
// feature's UserFinder without that package depending on this one.
type NameFinder struct {
	repo UserRepository
}

func NewNameFinder(repo UserRepository) *NameFinder {
	return &NameFinder{repo: repo}
}

func (f *NameFinder) FindByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := f.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for i := range users {
		names[users[i].ID.Hex()] = users[i].DisplayName()
	}
	return names, nil
}
