package rpc

import (
	"context"
	"net"
	"net/rpc"
	"time"

	"github.com/iWeeti/bancho-autohost/lobby"
	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/persistence"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc.
type AdminService struct {
	registry *lobby.Registry
	db       persistence.Database
}

func NewAdminService(registry *lobby.Registry, db persistence.Database) *AdminService {
	return &AdminService{registry: registry, db: db}
}

type ListLobbiesArgs struct{}

type ListLobbiesReply struct {
	Lobbies []lobby.Status
}

func (a *AdminService) ListLobbies(args *ListLobbiesArgs, reply *ListLobbiesReply) error {
	reply.Lobbies = a.registry.Statuses()
	return nil
}

type PlaytimeArgs struct {
	UserID int64
}

type PlaytimeReply struct {
	Seconds int64
}

func (a *AdminService) Playtime(args *PlaytimeArgs, reply *PlaytimeReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seconds, err := a.db.PlaytimeSeconds(ctx, args.UserID)
	if err != nil {
		return err
	}
	reply.Seconds = seconds
	return nil
}
