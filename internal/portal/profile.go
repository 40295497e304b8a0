package portal

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfile []byte

// Duration decodes Go duration strings such as "400ms" from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Profile holds the selectors and timings used to drive the portal.
type Profile struct {
	Login struct {
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
		Submit        string `yaml:"submit"`
		ReadyMenuItem string `yaml:"ready_menu_item"`
	} `yaml:"login"`

	Navigation struct {
		MenuItems []string `yaml:"menu_items"`
	} `yaml:"navigation"`

	Search struct {
		Frame      string `yaml:"frame"`
		FrameName  string `yaml:"frame_name"`
		ClaimInput string `yaml:"claim_input"`
		Submit     string `yaml:"submit"`
		ResultRows string `yaml:"result_rows"`
	} `yaml:"search"`

	Record struct {
		TreeNodes []string `yaml:"tree_nodes"`
	} `yaml:"record"`

	Text struct {
		Needles    []string `yaml:"needles"`
		MinNeedles int      `yaml:"min_needles"`
		MinChars   int      `yaml:"min_chars"`
		Attempts   int      `yaml:"attempts"`
		RetryDelay Duration `yaml:"retry_delay"`
		Fallbacks  []string `yaml:"fallbacks"`
	} `yaml:"text"`

	Timeouts struct {
		Default     Duration `yaml:"default"`
		Element     Duration `yaml:"element"`
		SearchReady Duration `yaml:"search_ready"`
	} `yaml:"timeouts"`
}

// DefaultProfile returns the embedded profile.
func DefaultProfile() (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(defaultProfile, &p); err != nil {
		return Profile{}, fmt.Errorf("decode embedded portal profile: %w", err)
	}
	return p, p.Validate()
}

// LoadProfile returns the embedded profile, overlaid with the file at path
// when path is not empty.
func LoadProfile(path string) (Profile, error) {
	p, err := DefaultProfile()
	if err != nil || path == "" {
		return p, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read portal profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("decode portal profile %s: %w", path, err)
	}
	return p, p.Validate()
}

// Validate checks that every selector needed for a fetch is present.
func (p Profile) Validate() error {
	var errs []error
	required := map[string]string{
		"login.username":     p.Login.Username,
		"login.password":     p.Login.Password,
		"login.submit":       p.Login.Submit,
		"search.frame":       p.Search.Frame,
		"search.frame_name":  p.Search.FrameName,
		"search.claim_input": p.Search.ClaimInput,
		"search.submit":      p.Search.Submit,
		"search.result_rows": p.Search.ResultRows,
	}
	for key, value := range required {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if len(p.Text.Needles) == 0 {
		errs = append(errs, errors.New("text.needles must not be empty"))
	}
	if p.Text.MinNeedles < 1 || p.Text.MinNeedles > len(p.Text.Needles) {
		errs = append(errs, fmt.Errorf("text.min_needles must be between 1 and %d", len(p.Text.Needles)))
	}
	if p.Text.Attempts < 1 {
		errs = append(errs, errors.New("text.attempts must be at least 1"))
	}
	return errors.Join(errs...)
}
