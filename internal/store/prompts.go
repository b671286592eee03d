package store

import "context"

// GetPromptByName retrieves a prompt by its unique name. Returns nil when no
// prompt is provisioned under that name.
func (s *Store) GetPromptByName(ctx context.Context, name string) (*Prompt, error) {
	var prompt Prompt
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&prompt).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}
