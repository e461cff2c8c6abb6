package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/mdlayher/vsock"

	"github.com/openlot/sealedbid/auction"
	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/ledger"
	"github.com/openlot/sealedbid/registry"
)

// HostServer exposes the auction host over a request/response socket: one
// JSON request in, one JSON response out, per connection.
type HostServer struct {
	port     uint32
	bank     *ledger.Ledger
	registry *registry.Registry
	factory  *auction.Factory
	recorder *audit.Recorder
}

// NewHostServer wires a fresh host ledger, asset registry, audit recorder,
// and factory.
func NewHostServer(port uint32) *HostServer {
	return newHostServer(port, ledger.SystemClock())
}

func newHostServer(port uint32, clock ledger.Clock) *HostServer {
	bank := ledger.NewLedger(clock)
	reg := registry.NewRegistry()
	recorder := audit.NewRecorder()
	return &HostServer{
		port:     port,
		bank:     bank,
		registry: reg,
		factory:  newFactory(bank, reg, recorder),
		recorder: recorder,
	}
}

// newFactory adapts the concrete registry to the capability surface the
// factory consumes.
func newFactory(bank *ledger.Ledger, reg *registry.Registry, recorder *audit.Recorder) *auction.Factory {
	return auction.NewFactory(bank, registryCapability{reg}, recorder)
}

// registryCapability narrows *registry.Registry to auction.AssetRegistryCapability.
type registryCapability struct {
	*registry.Registry
}

func (c registryCapability) RegisterReceiver(owner ledger.Account, receiver auction.CustodyReceiver) {
	c.Registry.RegisterReceiver(owner, receiver)
}

// listen opens the daemon socket. AUCTIOND_TRANSPORT=vsock selects a vsock
// listener for host-guest deployments; anything else binds plain TCP on
// localhost.
func (s *HostServer) listen() (net.Listener, error) {
	if os.Getenv("AUCTIOND_TRANSPORT") == "vsock" {
		listener, err := vsock.Listen(s.port, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create vsock listener: %w", err)
		}
		log.Printf("INFO: auction host listening on vsock port %d", s.port)
		return listener, nil
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return nil, fmt.Errorf("failed to create tcp listener: %w", err)
	}
	log.Printf("INFO: auction host listening on %s", listener.Addr())
	return listener, nil
}

func (s *HostServer) Start() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("ERROR: Failed to close listener: %v", err)
		}
	}()

	maxWorkers := getEnvIntDefault("AUCTIOND_MAX_WORKERS", 8)
	semaphore := make(chan struct{}, maxWorkers)
	log.Printf("INFO: Worker pool initialized with %d max concurrent workers", maxWorkers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("ERROR: Failed to accept connection: %v", err)
			continue
		}

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }() // Release worker slot
				s.handleConnection(c)
			}(conn)
		default:
			log.Printf("INFO: No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				log.Printf("ERROR: Failed to close rejected connection: %v", err)
			}
		}
	}
}

func (s *HostServer) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Panic recovered in handleConnection: %v", r)
		}
		if err := conn.Close(); err != nil {
			log.Printf("ERROR: Failed to close connection: %v", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		log.Printf("ERROR: Failed to read request: %v", err)
		return
	}

	response := s.handleRequest(buf.Bytes())

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(response); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

// Helper for optional environment variable parsing with a default.
func getEnvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("ERROR: Invalid value for %s: %s (using default %d)", key, value, fallback)
		return fallback
	}
	log.Printf("INFO: Using %s=%d from environment", key, intValue)
	return intValue
}

func main() {
	port := uint32(getEnvIntDefault("AUCTIOND_PORT", 5000))
	server := NewHostServer(port)
	log.Fatal(server.Start())
}
