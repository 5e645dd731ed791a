package service

import (
	"github.com/okian/partyrisk/internal/domain/model"
	"github.com/okian/partyrisk/internal/domain/scoring"
)

// RoleInfo describes one role of a model set and the state of its model.
type RoleInfo struct {
	Role      string           `json:"role"`
	ModelID   string           `json:"model_id"`
	Kind      model.OutputKind `json:"kind"`
	Required  bool             `json:"required"`
	Available bool             `json:"available"`
	Error     string           `json:"error,omitempty"`
	Features  []FeatureInfo    `json:"features"`
}

// ModelSetInfo describes a model set.
type ModelSetInfo struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Aliases         []string              `json:"aliases,omitempty"`
	State           string                `json:"state"`
	DelayDaysCap    float64               `json:"delay_days_cap"`
	Roles           []RoleInfo            `json:"roles"`
	Recommendations map[model.Tier]string `json:"recommendations"`
}

// ModelInfo describes the model set setID.
func (s *Service) ModelInfo(setID string) (*ModelSetInfo, error) {
	set, err := LookupSet(setID)
	if err != nil {
		return nil, err
	}
	info := &ModelSetInfo{
		ID:              set.ID,
		Name:            set.Name,
		Description:     set.Description,
		Aliases:         set.Aliases,
		State:           s.Health()[set.ID].State,
		DelayDaysCap:    scoring.DelayDaysCap,
		Roles:           make([]RoleInfo, 0, len(set.Roles)),
		Recommendations: set.Recommendations,
	}
	status := make(map[string]string)
	for _, st := range s.registry.Status() {
		status[st.ID] = st.Error
	}
	for _, r := range set.Roles {
		info.Roles = append(info.Roles, RoleInfo{
			Role:      r.Name,
			ModelID:   r.ModelID,
			Kind:      r.Kind,
			Required:  r.Required,
			Available: s.registry.Available(r.ModelID),
			Error:     status[r.ModelID],
			Features:  r.Features,
		})
	}
	return info, nil
}
