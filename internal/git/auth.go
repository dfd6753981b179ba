package git

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

// authMethod builds the go-git auth method for cfg. A nil method means
// anonymous access.
func authMethod(cfg *config.AuthConfig) (transport.AuthMethod, error) {
	if cfg.IsZero() {
		return nil, nil
	}
	switch cfg.Type {
	case config.AuthTypeSSH:
		keyPath := cfg.KeyPath
		if keyPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryAuth, "cannot locate ssh key").Build()
			}
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryAuth, "failed to load ssh key").
				WithContext("key_path", keyPath).Build()
		}
		return keys, nil
	case config.AuthTypeToken:
		if cfg.Token == "" {
			return nil, errors.AuthError("token authentication requires a token").Build()
		}
		return &http.BasicAuth{Username: "token", Password: cfg.Token}, nil
	case config.AuthTypeBasic:
		if cfg.Username == "" || cfg.Password == "" {
			return nil, errors.AuthError("basic authentication requires username and password").Build()
		}
		return &http.BasicAuth{Username: cfg.Username, Password: cfg.Password}, nil
	default:
		return nil, errors.AuthError("unsupported authentication type").
			WithContext("type", string(cfg.Type)).Build()
	}
}
