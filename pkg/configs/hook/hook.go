package hook

import (
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the hook config file.
func Load(filename string) (Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	return Unmarshal(content)
}

func Unmarshal(content []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type Config struct {
	// hooks called before and after each execution.
	Lifecycle WebHook `yaml:"lifecycle,omitempty"`
}

type WebHook struct {
	Before []*url.URL
	After  []*url.URL
}

func (wh *WebHook) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Before []string `yaml:"before"`
		After  []string `yaml:"after"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	before, err := parseURLs(raw.Before)
	if err != nil {
		return err
	}
	after, err := parseURLs(raw.After)
	if err != nil {
		return err
	}
	wh.Before, wh.After = before, after
	return nil
}

func parseURLs(us []string) ([]*url.URL, error) {
	ret := make([]*url.URL, len(us))
	for i, u := range us {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		ret[i] = parsed
	}
	return ret, nil
}
