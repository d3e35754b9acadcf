package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gagliardetto/solana-go"
)

const (
	keyringFileName = "keyring.json"
	configDirName   = ".config"
	appDirName      = "vault-cli"
)

// profileData is the on-disk form of a profile.
type profileData struct {
	Name       string `json:"name"`
	PrivateKey string `json:"private_key"` // Stored as base64 encoded string
}

// keyringData is the on-disk form of the whole keyring.
type keyringData struct {
	Profiles []profileData `json:"profiles"`
}

// Keyring provides access to the JSON-based profile store.
type Keyring struct {
	path string
}

// Open opens and initializes the keyring file.
func Open() (*Keyring, error) {
	path, err := getKeyringPath()
	if err != nil {
		return nil, fmt.Errorf("could not get keyring path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create keyring directory: %w", err)
	}

	kr := &Keyring{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := kr.write(&keyringData{}); err != nil {
			return nil, fmt.Errorf("could not create keyring file: %w", err)
		}
	}

	return kr, nil
}

// GetProfile retrieves the profile with the given name.
// It returns an error if no such profile exists.
func (kr *Keyring) GetProfile(name string) (*Profile, error) {
	data, err := kr.read()
	if err != nil {
		return nil, err
	}

	for _, p := range data.Profiles {
		if p.Name != name {
			continue
		}
		privateKeyBytes, err := base64.StdEncoding.DecodeString(p.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("could not decode private key for %q: %w", name, err)
		}
		if len(privateKeyBytes) != solana.PrivateKeyLength {
			return nil, fmt.Errorf("invalid private key length for %q: expected %d, got %d", name, solana.PrivateKeyLength, len(privateKeyBytes))
		}
		return &Profile{Name: p.Name, PrivateKey: privateKeyBytes}, nil
	}

	return nil, fmt.Errorf("no profile named %q", name)
}

// SaveProfile stores a private key under the given name, replacing any
// existing profile with that name.
func (kr *Keyring) SaveProfile(name string, privateKey solana.PrivateKey) error {
	data, err := kr.read()
	if err != nil {
		return err
	}

	entry := profileData{
		Name:       name,
		PrivateKey: base64.StdEncoding.EncodeToString(privateKey[:]),
	}

	replaced := false
	for i, p := range data.Profiles {
		if p.Name == name {
			data.Profiles[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		data.Profiles = append(data.Profiles, entry)
	}

	return kr.write(data)
}

// DeleteProfile removes the profile with the given name, if present.
func (kr *Keyring) DeleteProfile(name string) error {
	data, err := kr.read()
	if err != nil {
		return err
	}

	kept := data.Profiles[:0]
	for _, p := range data.Profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	data.Profiles = kept

	return kr.write(data)
}

// Names lists the stored profile names in sorted order.
func (kr *Keyring) Names() ([]string, error) {
	data, err := kr.read()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(data.Profiles))
	for _, p := range data.Profiles {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (kr *Keyring) read() (*keyringData, error) {
	raw, err := os.ReadFile(kr.path)
	if err != nil {
		return nil, fmt.Errorf("could not read keyring file: %w", err)
	}

	data := &keyringData{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("could not parse keyring file: %w", err)
	}
	return data, nil
}

func (kr *Keyring) write(data *keyringData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("could not marshal keyring: %w", err)
	}
	if err := os.WriteFile(kr.path, raw, 0600); err != nil {
		return fmt.Errorf("could not write keyring file: %w", err)
	}
	return nil
}

// getKeyringPath returns the absolute path of the keyring file,
// e.g. /home/user/.config/vault-cli/keyring.json.
func getKeyringPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName, appDirName, keyringFileName), nil
}
