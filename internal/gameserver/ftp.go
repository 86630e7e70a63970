package gameserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"time"

	"farmwatch/internal/config"
	"farmwatch/internal/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jlaffaye/ftp"
)

// FTPSession is one logged-in connection.
type FTPSession interface {
	Retrieve(path string) ([]byte, error)
	Store(path string, r io.Reader) error
	MakeDir(path string) error
	Close() error
}

// FTPDialer opens a logged-in session.
type FTPDialer func(ctx context.Context) (FTPSession, error)

type ftpSession struct {
	conn *ftp.ServerConn
}

func (s *ftpSession) Retrieve(p string) ([]byte, error) {
	resp, err := s.conn.Retr(p)
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	return io.ReadAll(io.LimitReader(resp, maxBodyBytes))
}

func (s *ftpSession) Store(p string, r io.Reader) error {
	return s.conn.Stor(p, r)
}

func (s *ftpSession) MakeDir(p string) error {
	return s.conn.MakeDir(p)
}

func (s *ftpSession) Close() error {
	return s.conn.Quit()
}

// NewFTPDialer dials the configured server with jlaffaye/ftp.
func NewFTPDialer(cfg config.GameConfig) FTPDialer {
	addr := net.JoinHostPort(cfg.FTPHost, strconv.Itoa(cfg.FTPPort))
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func(ctx context.Context) (FTPSession, error) {
		conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("ftp dial %s: %w", addr, err)
		}
		if err := conn.Login(cfg.FTPUser, cfg.FTPPass); err != nil {
			_ = conn.Quit()
			return nil, fmt.Errorf("ftp login: %w", err)
		}
		return &ftpSession{conn: conn}, nil
	}
}

// SavegameFetcher reads files from the savegame directory, caching each
// file for a short TTL so panel renders and API reads share one fetch.
type SavegameFetcher struct {
	dial  FTPDialer
	dir   string
	cache *expirable.LRU[string, []byte]
}

func NewSavegameFetcher(dial FTPDialer, dir string, size int, ttl time.Duration) *SavegameFetcher {
	if size <= 0 {
		size = 16
	}
	return &SavegameFetcher{
		dial:  dial,
		dir:   dir,
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Fetch returns the contents of dir/name.
func (f *SavegameFetcher) Fetch(ctx context.Context, name string) (body []byte, err error) {
	if cached, ok := f.cache.Get(name); ok {
		metrics.IncCache("hit")
		return cached, nil
	}
	metrics.IncCache("miss")
	start := time.Now()
	defer func() { metrics.ObserveFetch("ftp", time.Since(start), err) }()

	sess, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	body, err = sess.Retrieve(path.Join(f.dir, name))
	if err != nil {
		return nil, fmt.Errorf("ftp retr %s: %w", name, err)
	}
	f.cache.Add(name, body)
	return body, nil
}

// Upload stores the reader at remote over a fresh session, creating
// missing parent directories first.
func Upload(ctx context.Context, dial FTPDialer, remote string, r io.Reader) error {
	sess, err := dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	for _, dir := range parentDirs(remote) {
		// existing directories answer 550
		_ = sess.MakeDir(dir)
	}
	if err := sess.Store(remote, r); err != nil {
		return fmt.Errorf("ftp stor %s: %w", remote, err)
	}
	return nil
}

// parentDirs lists every ancestor of p, shortest first.
func parentDirs(p string) []string {
	var out []string
	for dir := path.Dir(p); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		out = append([]string{dir}, out...)
	}
	return out
}
