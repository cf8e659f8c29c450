package settingsdb

import (
	"errors"
	"fmt"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

// LoadChannelConfig returns nil when no channel has been saved.
func LoadChannelConfig(store SettingsStore) (*types.ChannelConfig, error) {
	channelId, found, err := store.Get(KeyChannelID)
	if err != nil {
		return nil, fmt.Errorf("load channel id: %w", err)
	}
	if !found || channelId == "" {
		return nil, nil
	}
	readKey, _, err := store.Get(KeyReadApiKey)
	if err != nil {
		return nil, fmt.Errorf("load read key: %w", err)
	}
	return &types.ChannelConfig{ChannelID: channelId, ReadKey: readKey}, nil
}

// SaveChannelConfig trims and stores cfg. An empty read key removes the stored one.
func SaveChannelConfig(store SettingsStore, cfg types.ChannelConfig) (*types.ChannelConfig, error) {
	normalized, err := cfg.Normalized()
	if err != nil {
		return nil, err
	}
	if err := store.Set(KeyChannelID, normalized.ChannelID); err != nil {
		return nil, fmt.Errorf("save channel id: %w", err)
	}
	if normalized.ReadKey == "" {
		err = store.Delete(KeyReadApiKey)
	} else {
		err = store.Set(KeyReadApiKey, normalized.ReadKey)
	}
	if err != nil {
		return nil, fmt.Errorf("save read key: %w", err)
	}
	return &normalized, nil
}

func ClearChannelConfig(store SettingsStore) error {
	return errors.Join(
		store.Delete(KeyChannelID),
		store.Delete(KeyReadApiKey),
	)
}

// LoadGridType falls back to the default for missing or unknown values.
func LoadGridType(store SettingsStore) (types.GridType, error) {
	value, found, err := store.Get(KeySelectedGrid)
	if err != nil {
		return types.DefaultGridType, fmt.Errorf("load grid type: %w", err)
	}
	if !found {
		return types.DefaultGridType, nil
	}
	grid, err := types.ParseGridType(value)
	if err != nil {
		return types.DefaultGridType, nil
	}
	return grid, nil
}

func SaveGridType(store SettingsStore, grid types.GridType) error {
	return store.Set(KeySelectedGrid, grid.String())
}
