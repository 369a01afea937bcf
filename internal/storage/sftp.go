package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"docvault/internal/config"
)

// sftpStorage implements Storage against a remote SFTP server. Each operation
// dials a fresh connection; the backends are long-latency by nature and the
// service layer never holds one open across requests.
type sftpStorage struct {
	addr       string
	remoteDir  string
	clientConf *ssh.ClientConfig
}

// NewSFTP creates an SFTP-backed Storage. Authentication uses a password or a
// private key file, whichever is configured.
func NewSFTP(cfg config.SFTPConfig) (Storage, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("sftp host and user are required")
	}
	port := cfg.Port
	if port == "" {
		port = "22"
	}

	var auth []ssh.AuthMethod
	switch {
	case cfg.Password != "":
		auth = append(auth, ssh.Password(cfg.Password))
	case cfg.PrivateKeyPath != "":
		key, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	default:
		return nil, fmt.Errorf("sftp password or private key is required")
	}

	return &sftpStorage{
		addr:      cfg.Host + ":" + port,
		remoteDir: path.Clean("/" + cfg.RemoteDir),
		clientConf: &ssh.ClientConfig{
			User: cfg.User,
			Auth: auth,
			// Host key pinning is a deployment concern; the remote dir is
			// assumed to live inside a trusted network segment.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		},
	}, nil
}

func (s *sftpStorage) connect() (*ssh.Client, *sftp.Client, error) {
	conn, err := ssh.Dial("tcp", s.addr, s.clientConf)
	if err != nil {
		return nil, nil, fmt.Errorf("dial sftp server: %w", err)
	}
	cli, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open sftp session: %w", err)
	}
	return conn, cli, nil
}

// Save uploads content under name inside the remote directory. The remote
// file is created exclusively and removed again if the upload fails midway.
func (s *sftpStorage) Save(ctx context.Context, r io.Reader, name string, size int64) (string, error) {
	conn, cli, err := s.connect()
	if err != nil {
		return "", err
	}
	defer conn.Close()
	defer cli.Close()

	remote := path.Join(s.remoteDir, name)
	if err := cli.MkdirAll(path.Dir(remote)); err != nil {
		return "", fmt.Errorf("create remote directory: %w", err)
	}
	f, err := cli.OpenFile(remote, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return "", fmt.Errorf("create remote file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		cli.Remove(remote)
		return "", fmt.Errorf("write remote file: %w", err)
	}
	if err := f.Close(); err != nil {
		cli.Remove(remote)
		return "", fmt.Errorf("close remote file: %w", err)
	}
	return remote, nil
}

// Retrieve downloads the remote file into memory and returns a reader over
// it, so the connection does not outlive the call.
func (s *sftpStorage) Retrieve(ctx context.Context, location string) (io.ReadCloser, error) {
	conn, cli, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	defer cli.Close()

	f, err := cli.Open(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open remote file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read remote file: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the remote file. A missing file reports found=false.
func (s *sftpStorage) Delete(ctx context.Context, location string) (bool, error) {
	conn, cli, err := s.connect()
	if err != nil {
		return false, err
	}
	defer conn.Close()
	defer cli.Close()

	if err := cli.Remove(location); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove remote file: %w", err)
	}
	return true, nil
}
