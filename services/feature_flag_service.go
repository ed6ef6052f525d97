package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"dealer-portal-api/models"
)

// flagSchemaVersion is the version of the default flag set below. Bump it
// whenever a default changes; EnsureDefaults migrates stored flags that are
// still system-owned.
const flagSchemaVersion = 1

type flagDefault struct {
	enabled bool
	reason  string
}

var defaultFlags = map[string]flagDefault{
	models.ModuleDealerPCC:       {enabled: true, reason: "Default module"},
	models.ModuleAPIRegistration: {enabled: false},
	models.ModuleMTMeet:          {enabled: false},
	models.ModuleWorkshopSurvey:  {enabled: false},
	models.ModuleWarrantySurvey:  {enabled: false},
	models.ModuleTechnicalSurvey: {enabled: false},
}

// FlagChangeCallback receives the full flag map after a successful SetFlag.
type FlagChangeCallback func(flags map[string]models.FeatureFlag)

type flagListener struct {
	id int
	cb FlagChangeCallback
}

// FeatureFlagService holds one boolean flag per module key and notifies
// subscribers after each change. Delivery is synchronous and in registration
// order; a subscriber must not call SetFlag from its own callback.
type FeatureFlagService struct {
	db    *gorm.DB
	audit *AuditService

	mu        sync.Mutex
	listeners []flagListener
	nextID    int
}

func NewFeatureFlagService(db *gorm.DB, audit *AuditService) (*FeatureFlagService, error) {
	s := &FeatureFlagService{db: db, audit: audit}
	if err := s.EnsureDefaults(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureDefaults seeds missing flags and migrates stored defaults when the
// schema version increments. Only flags still owned by "system" are eligible
// for a default change; a human override is permanent. Stored reasons are
// preserved through migration.
func (s *FeatureFlagService) EnsureDefaults() error {
	return s.migrate(flagSchemaVersion, defaultFlags)
}

func (s *FeatureFlagService) migrate(version int, defaults map[string]flagDefault) error {
	storedVersion, err := models.GetConfigInt(s.db, models.ConfigKeyFlagSchemaVersion)
	if err != nil {
		return storageErr("flag schema version", err)
	}

	var stored []models.FeatureFlag
	if err := s.db.Find(&stored).Error; err != nil {
		return storageErr("flag load", err)
	}
	byKey := make(map[string]models.FeatureFlag, len(stored))
	for _, f := range stored {
		byKey[f.ModuleKey] = f
	}

	now := time.Now().UTC()
	for _, key := range models.ModuleKeys {
		def := defaults[key]
		existing, ok := byKey[key]
		if !ok {
			flag := models.FeatureFlag{
				ModuleKey:      key,
				Enabled:        def.enabled,
				LastModifiedBy: models.FlagOwnerSystem,
				LastModifiedAt: now,
			}
			if def.reason != "" {
				reason := def.reason
				flag.Reason = &reason
			}
			if err := s.db.Create(&flag).Error; err != nil {
				return storageErr("flag seed", err)
			}
			continue
		}

		if storedVersion < version &&
			existing.LastModifiedBy == models.FlagOwnerSystem &&
			existing.Enabled != def.enabled {
			updates := map[string]any{
				"enabled":          def.enabled,
				"last_modified_at": now,
			}
			if err := s.db.Model(&models.FeatureFlag{}).
				Where("module_key = ?", key).Updates(updates).Error; err != nil {
				return storageErr("flag migrate", err)
			}
		}
	}

	if storedVersion < version {
		if err := models.SetConfigInt(s.db, models.ConfigKeyFlagSchemaVersion, version); err != nil {
			return storageErr("flag schema version write", err)
		}
	}
	return nil
}

// GetFlag reports whether a module is enabled. Unknown keys are disabled.
func (s *FeatureFlagService) GetFlag(key string) bool {
	var flag models.FeatureFlag
	if err := s.db.Where("module_key = ?", key).First(&flag).Error; err != nil {
		return false
	}
	return flag.Enabled
}

// GetAllFlags returns the stored flags merged over the defaults, inserting
// any default key missing from storage so the set self-heals without
// overwriting user changes.
func (s *FeatureFlagService) GetAllFlags() (map[string]models.FeatureFlag, error) {
	if err := s.EnsureDefaults(); err != nil {
		return nil, err
	}
	var stored []models.FeatureFlag
	if err := s.db.Find(&stored).Error; err != nil {
		return nil, storageErr("flag load", err)
	}
	flags := make(map[string]models.FeatureFlag, len(stored))
	for _, f := range stored {
		flags[f.ModuleKey] = f
	}
	return flags, nil
}

// SetFlag enables or disables a module. The dealer_pcc module can never be
// disabled, regardless of actor. Subscribers are notified synchronously
// after the change is persisted and audited.
func (s *FeatureFlagService) SetFlag(key string, enabled bool, actor *models.User, reason string) error {
	if actor == nil {
		return ErrAuthenticationRequired
	}
	if !models.IsValidModuleKey(key) {
		return ErrUnknownModule
	}
	if key == models.ModuleDealerPCC && !enabled {
		return ErrProtectedModule
	}

	var previous models.FeatureFlag
	previousState := defaultFlags[key].enabled
	if err := s.db.Where("module_key = ?", key).First(&previous).Error; err == nil {
		previousState = previous.Enabled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storageErr("flag load", err)
	}

	flag := models.FeatureFlag{
		ModuleKey:      key,
		Enabled:        enabled,
		LastModifiedBy: actor.ID,
		LastModifiedAt: time.Now().UTC(),
	}
	if reason != "" {
		flag.Reason = &reason
	}
	if err := s.db.Save(&flag).Error; err != nil {
		return storageErr("flag save", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	s.audit.Log(AuditEntry{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		Role:      actor.Role,
		Module:    key,
		Action:    models.AuditActionFlagToggle,
		Details: FlagToggleDetails{
			PreviousState: previousState,
			NewState:      enabled,
			Reason:        reason,
		},
		Notes: "Module " + key + " " + state,
	})

	s.notify()
	return nil
}

// OnChange registers a callback fired with the full flag map after every
// successful SetFlag. The returned function unsubscribes.
func (s *FeatureFlagService) OnChange(cb FlagChangeCallback) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, flagListener{id: id, cb: cb})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *FeatureFlagService) notify() {
	flags, err := s.GetAllFlags()
	if err != nil {
		return
	}
	s.mu.Lock()
	listeners := make([]flagListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, l := range listeners {
		l.cb(flags)
	}
}
