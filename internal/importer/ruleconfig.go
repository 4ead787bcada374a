package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

type ruleConfigEntry struct {
	Key                string `json:"key"`
	Enabled            *bool  `json:"enabled"`
	Description        string `json:"description"`
	EventType          string `json:"event_type"`
	MinCapacityPercent *int   `json:"min_capacity_percent"`
	MinDurationMinutes *int   `json:"min_duration_minutes"`
	MaxDurationMinutes *int   `json:"max_duration_minutes"`
}

// LoadRuleConfigFile reads a rule configuration file, a JSON array of rule
// entries keyed by detection rule. Entries for unknown rule keys fail the
// whole load so a typo cannot silently leave a rule on its default.
func LoadRuleConfigFile(path string) ([]application.RuleSettingInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: rule config: %w", err)
	}
	return parseRuleConfig(data)
}

func parseRuleConfig(data []byte) ([]application.RuleSettingInput, error) {
	entries := []ruleConfigEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("importer: rule config: %w", err)
	}

	inputs := make([]application.RuleSettingInput, 0, len(entries))
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return nil, fmt.Errorf("importer: rule config: Eintrag ohne Schlüssel")
		}
		if !timetable.KnownRuleKey(key) {
			return nil, fmt.Errorf("importer: rule config: unbekannter Regelschlüssel %q", key)
		}
		inputs = append(inputs, application.RuleSettingInput{
			Key:                key,
			Enabled:            entry.Enabled,
			Description:        strings.TrimSpace(entry.Description),
			EventType:          strings.TrimSpace(entry.EventType),
			MinCapacityPercent: entry.MinCapacityPercent,
			MinDurationMinutes: entry.MinDurationMinutes,
			MaxDurationMinutes: entry.MaxDurationMinutes,
		})
	}
	return inputs, nil
}
