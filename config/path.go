package config

import (
	"path"

	"github.com/mitchellh/go-homedir"
)

type HomeDir string

type IHome interface {
	HomePath() (HomeDir, error)
	ConfigPath() (string, error)
}

// Home locates the market repo on disk.
type Home struct {
	HomeDir string `toml:"-"`
}

var _ IHome = (*Home)(nil)

func (h *Home) HomePath() (HomeDir, error) {
	p, err := homedir.Expand(h.HomeDir)
	if err != nil {
		return "", err
	}
	return HomeDir(p), nil
}

func (h *Home) ConfigPath() (string, error) {
	return h.HomeJoin("config.toml")
}

func (h *Home) HomeJoin(sep ...string) (string, error) {
	homeDir, err := homedir.Expand(h.HomeDir)
	if err != nil {
		return "", err
	}
	finalPath := homeDir
	for _, p := range sep {
		finalPath = path.Join(finalPath, p)
	}

	return finalPath, nil
}
