package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const forwardTimeout = 2 * time.Second

// LinkHandler receives links forwarded by later instances.
type LinkHandler func(link string)

// InstanceGuard holds the single-instance lock and accepts forwarded links.
type InstanceGuard struct {
	listener net.Listener
	address  string
	logger   *slog.Logger

	mu      sync.Mutex
	handler LinkHandler
	pending []string
	done    chan struct{}
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
// When another instance holds it, link (if any) is forwarded to that
// instance and ErrAlreadyRunning is returned.
func AcquireSingleInstance(appName, link string, logger *slog.Logger) (*InstanceGuard, error) {
	return acquire(fmt.Sprintf("127.0.0.1:%d", portFromName(appName)), link, logger)
}

func acquire(address, link string, logger *slog.Logger) (*InstanceGuard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if forwardErr := forward(address, link); forwardErr != nil {
			logger.Warn("forward link to running instance", "address", address, "error", forwardErr)
		}
		return nil, ErrAlreadyRunning
	}
	guard := &InstanceGuard{
		listener: listener,
		address:  listener.Addr().String(),
		logger:   logger,
		done:     make(chan struct{}),
	}
	go guard.accept()
	return guard, nil
}

// SetHandler installs the handler for forwarded links. Links that arrived
// before a handler was installed are delivered immediately.
func (guard *InstanceGuard) SetHandler(handler LinkHandler) {
	guard.mu.Lock()
	guard.handler = handler
	pending := guard.pending
	guard.pending = nil
	guard.mu.Unlock()

	if handler == nil {
		return
	}
	for _, link := range pending {
		handler(link)
	}
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	<-guard.done
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) accept() {
	defer close(guard.done)
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		guard.receive(conn)
	}
}

func (guard *InstanceGuard) receive(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	_ = conn.SetReadDeadline(time.Now().Add(forwardTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		guard.logger.Debug("instance ping without link", "error", err)
		return
	}
	link := strings.TrimSpace(line)
	if link == "" {
		return
	}

	guard.mu.Lock()
	handler := guard.handler
	if handler == nil {
		guard.pending = append(guard.pending, link)
	}
	guard.mu.Unlock()

	if handler != nil {
		handler(link)
	}
}

func forward(address, link string) error {
	conn, err := net.DialTimeout("tcp", address, forwardTimeout)
	if err != nil {
		return fmt.Errorf("dial running instance: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()
	_ = conn.SetWriteDeadline(time.Now().Add(forwardTimeout))
	if _, err := fmt.Fprintln(conn, link); err != nil {
		return fmt.Errorf("write link: %w", err)
	}
	return nil
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
