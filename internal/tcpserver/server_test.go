package tcpserver

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/Domenick1991/flightbooking/internal/dispatch"
	"github.com/Domenick1991/flightbooking/internal/handlers"
	"github.com/Domenick1991/flightbooking/internal/protocol"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	addr  string
	srv   *Server
	store *repository.MemoryStore
	stop  func()
	done  chan error
}

func startServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	log := hclog.NewNullLogger()

	store := repository.NewMemoryStore()
	store.SeedDemo()

	userSvc := users.NewUserService(store.UserRepository(), auth.NewBcryptHasher(bcrypt.MinCost))
	flightSvc := flights.NewFlightService(store.FlightRepository(), store.SeatRepository(), nil, log)
	coord := booking.NewCoordinator(store.FlightRepository(), store.SeatRepository(), store.BookingRepository(), log)

	d := dispatch.New(log)
	handlers.New(userSvc, flightSvc, coord, cfg.Auth, log).Register(d)
	d.Register("BOOM", func(context.Context, *session.Session, []string) protocol.Result {
		panic("boom")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := New(cfg.Server, d, log)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	ts := &testServer{addr: ln.Addr().String(), srv: srv, store: store, stop: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ts
}

func dial(t *testing.T, addr string) *client.Client {
	t.Helper()
	c, err := client.DialTimeout(addr, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *client.Client, line string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Send(ctx, line)
	require.NoError(t, err)
	return resp
}

func TestServer_Scenario(t *testing.T) {
	ts := startServer(t, config.Default())
	c := dial(t, ts.addr)

	assert.Equal(t, "ERROR: Invalid credentials", send(t, c, "LOGIN alice Secret123"))
	assert.Equal(t, "SUCCESS: User registered", send(t, c, "REGISTER alice Secret123"))
	assert.Equal(t, "ERROR: Username already exists", send(t, c, "REGISTER alice Other1"))
	assert.Equal(t, "SUCCESS=1", send(t, c, "LOGIN alice Secret123"))

	assert.Equal(t, "SUCCESS: Seat 2B booked for flight 1", send(t, c, "BOOK_SEAT 1 2B"))
	assert.Equal(t, "ERROR: Seat is already booked", send(t, c, "BOOK_SEAT 1 2B"))

	flightsResp := send(t, c, "GET_FLIGHTS")
	assert.Len(t, client.SplitRecords(flightsResp), 3)
	assert.True(t, strings.HasPrefix(flightsResp, "Flight ID: 1, From: Moscow"))
}

func TestServer_BadRequestsKeepConnection(t *testing.T) {
	ts := startServer(t, config.Default())
	c := dial(t, ts.addr)

	assert.Equal(t, "ERROR: Invalid request", send(t, c, ""))
	assert.Equal(t, "ERROR: Invalid request", send(t, c, "   "))
	assert.Equal(t, "ERROR: Unknown command", send(t, c, "FLY_ME 1"))
	assert.Equal(t, "ERROR: boom", send(t, c, "BOOM"))
	assert.Equal(t, "ERROR: Missing parameters", send(t, c, "BOOK_SEAT"))
	assert.True(t, strings.HasPrefix(send(t, c, "GET_SEATS 1"), "Seats: ["))
}

func TestServer_ConcurrentClientsRaceForSeat(t *testing.T) {
	ts := startServer(t, config.Default())

	const clients = 20
	results := make([]string, clients)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < clients; i++ {
		c := dial(t, ts.addr)
		wg.Add(1)
		go func(i int, c *client.Client) {
			defer wg.Done()
			<-start
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			resp, err := c.Send(ctx, "BOOK_SEAT 3 5C")
			if err != nil {
				resp = err.Error()
			}
			results[i] = resp
		}(i, c)
	}
	close(start)
	wg.Wait()

	var success, booked int
	for _, r := range results {
		switch r {
		case "SUCCESS: Seat 5C booked for flight 3":
			success++
		case "ERROR: Seat is already booked":
			booked++
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, clients-1, booked)
	assert.Len(t, ts.store.Bookings(), 1)
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.BindToSession = true
	ts := startServer(t, cfg)

	a := dial(t, ts.addr)
	b := dial(t, ts.addr)

	require.Equal(t, "SUCCESS: User registered", send(t, a, "REGISTER alice pw"))
	require.Equal(t, "SUCCESS=1", send(t, a, "LOGIN alice pw"))
	require.Equal(t, "SUCCESS: User info added", send(t, a, "UPDATE_USER 1 Alice A 30"))

	assert.Equal(t, "USER=Alice,A,30", send(t, a, "GET_USER 1"))
	assert.Equal(t, "ERROR: Not authorized", send(t, b, "GET_USER 1"))
}

func TestServer_LineTooLong(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxLineBytes = 64
	ts := startServer(t, cfg)
	c := dial(t, ts.addr)

	assert.Equal(t, "ERROR: Request too long", send(t, c, "REGISTER "+strings.Repeat("x", 128)+" pw"))
	assert.Equal(t, "ERROR: Request too long", send(t, c, "REGISTER "+strings.Repeat("y", 64<<10)+" pw"))
	assert.Equal(t, "SUCCESS: User registered", send(t, c, "REGISTER short pw"))
	assert.Equal(t, 1, ts.srv.ActiveConnections())
}

func TestReadLine(t *testing.T) {
	input := "GET_FLIGHTS\r\n" +
		strings.Repeat("x", 40) + "\n" +
		strings.Repeat("z", 10000) + "\r\n" +
		"\n" +
		"BOOK_SEAT 1 2B"
	r := bufio.NewReaderSize(strings.NewReader(input), 16)

	line, err := readLine(r, 32)
	require.NoError(t, err)
	assert.Equal(t, "GET_FLIGHTS", line)

	_, err = readLine(r, 32)
	assert.ErrorIs(t, err, errLineTooLong)

	_, err = readLine(r, 32)
	assert.ErrorIs(t, err, errLineTooLong)

	line, err = readLine(r, 32)
	require.NoError(t, err)
	assert.Equal(t, "", line)

	line, err = readLine(r, 32)
	require.NoError(t, err)
	assert.Equal(t, "BOOK_SEAT 1 2B", line)

	_, err = readLine(r, 32)
	assert.ErrorIs(t, err, io.EOF)
}

func TestServer_IdleTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Server.IdleTimeoutSeconds = 1
	ts := startServer(t, cfg)
	c := dial(t, ts.addr)

	assert.Equal(t, "SUCCESS: User registered", send(t, c, "REGISTER idle pw"))

	require.Eventually(t, func() bool { return ts.srv.ActiveConnections() == 0 }, 5*time.Second, 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := c.Send(ctx, "GET_FLIGHTS")
	assert.Error(t, err)
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	ts := startServer(t, config.Default())
	c := dial(t, ts.addr)
	require.Equal(t, "ERROR: Unknown command", send(t, c, "PING"))
	require.Eventually(t, func() bool { return ts.srv.ActiveConnections() == 1 }, time.Second, 10*time.Millisecond)

	ts.stop()
	select {
	case err := <-ts.done:
		require.NoError(t, err)
		ts.done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	assert.Equal(t, 0, ts.srv.ActiveConnections())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := c.Send(ctx, "GET_FLIGHTS")
	assert.Error(t, err)

	_, err = net.DialTimeout("tcp", ts.addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_SeatsNotDoubleBookedAcrossFlights(t *testing.T) {
	ts := startServer(t, config.Default())
	c := dial(t, ts.addr)

	assert.Equal(t, "SUCCESS: Seat 1A booked for flight 1", send(t, c, "BOOK_SEAT 1 1A"))
	assert.Equal(t, "SUCCESS: Seat 1A booked for flight 2", send(t, c, "BOOK_SEAT 2 1A"))
	assert.Equal(t, "ERROR: Flight does not exist", send(t, c, "BOOK_SEAT 99 1A"))

	assert.Len(t, ts.store.Bookings(), 2)
}
