package testutils

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	sshImage          = "linuxserver/openssh-server:version-10.0_p1-r10"
	sshImageEnv       = "WAKENRUN_TEST_SSH_IMAGE"
	sshUser           = "wakenrun"
	sshContainerPort  = "2222/tcp"
	sshStartupTimeout = 30 * time.Second
)

// SSHContainer is a running OpenSSH server that trusts KeyPath and whose
// host key is pinned in KnownHostsPath.
type SSHContainer struct {
	Container      testcontainers.Container
	Host           string
	Port           int
	User           string
	KeyPath        string
	KnownHostsPath string
}

// Address is the host:port the server listens on.
func (c *SSHContainer) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// ClientOptions returns the ssh client options that pin the container's host key.
func (c *SSHContainer) ClientOptions() []string {
	return []string{
		"UserKnownHostsFile=" + c.KnownHostsPath,
		"StrictHostKeyChecking=yes",
		"BatchMode=yes",
	}
}

// SetupSSHContainer starts an OpenSSH container for a generated ed25519
// client key. The container is terminated when the test ends. The image can
// be replaced through WAKENRUN_TEST_SSH_IMAGE.
func SetupSSHContainer(t *testing.T, ctx context.Context) *SSHContainer {
	t.Helper()

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "id_ed25519")
	authorized, err := writeClientKey(keyPath)
	if err != nil {
		t.Fatalf("failed to create client key: %v", err)
	}

	image := os.Getenv(sshImageEnv)
	if image == "" {
		image = sshImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{sshContainerPort},
			Env: map[string]string{
				"PUBLIC_KEY": authorized,
				"USER_NAME":  sshUser,
			},
			WaitingFor: wait.ForListeningPort(sshContainerPort).WithStartupTimeout(sshStartupTimeout),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start ssh container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate ssh container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, sshContainerPort)
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	c := &SSHContainer{
		Container:      container,
		Host:           host,
		Port:           mapped.Int(),
		User:           sshUser,
		KeyPath:        keyPath,
		KnownHostsPath: filepath.Join(dir, "known_hosts"),
	}
	if err := pinHostKey(ctx, c.Address(), c.KnownHostsPath); err != nil {
		t.Fatalf("failed to pin host key: %v", err)
	}
	return c
}

// writeClientKey stores a new OpenSSH private key at path and returns the
// matching authorized_keys line.
func writeClientKey(path string) (string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	block, err := ssh.MarshalPrivateKey(priv, "wakenrun integration")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		return "", err
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", err
	}
	return string(ssh.MarshalAuthorizedKey(sshPub)), nil
}

var errHostKeySeen = errors.New("host key captured")

// pinHostKey reads the server's host key during a handshake that is aborted
// right after key exchange and writes it as a known_hosts entry. ssh looks up
// non-default ports as "[host]:port", which knownhosts.Normalize produces.
func pinHostKey(ctx context.Context, address, knownHostsPath string) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", address, err)
	}
	defer conn.Close()

	var hostKey ssh.PublicKey
	_, _, _, err = ssh.NewClientConn(conn, address, &ssh.ClientConfig{
		User: sshUser,
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			hostKey = key
			return errHostKeySeen
		},
	})
	if hostKey == nil {
		return fmt.Errorf("no host key offered by %s: %w", address, err)
	}

	line := knownhosts.Line([]string{knownhosts.Normalize(address)}, hostKey)
	return os.WriteFile(knownHostsPath, []byte(line+"\n"), 0600)
}
