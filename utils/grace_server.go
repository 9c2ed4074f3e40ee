package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 60 * time.Second

	gracefulEnvKey     = "IS_GRACEFUL"
	gracefulEnvEntry   = gracefulEnvKey + "=1"
	gracefulListenerFd = 3
)

// graceServer wraps http.Server with zero-downtime restart: SIGUSR2 forks a
// replacement process that inherits the listening socket on fd 3, then the
// old process drains and exits. SIGTERM drains and exits without replacing.
type graceServer struct {
	*http.Server

	listener     net.Listener
	inherited    bool
	signals      chan os.Signal
	shutdownDone chan struct{}
}

// GraceServer serves handler on addr until SIGTERM, surviving SIGUSR2
// restarts without dropping the listening socket.
func GraceServer(addr string, handler http.Handler) error {
	srv := &graceServer{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		inherited:    os.Getenv(gracefulEnvKey) != "",
		signals:      make(chan os.Signal, 1),
		shutdownDone: make(chan struct{}),
	}

	ln, err := srv.listen(addr)
	if err != nil {
		return err
	}
	srv.listener = ln

	go srv.handleSignals()
	err = srv.Serve(srv.listener)
	// Serve returns as soon as the listener closes; wait for in-flight
	// requests to finish draining.
	<-srv.shutdownDone
	return err
}

func (srv *graceServer) listen(addr string) (net.Listener, error) {
	if srv.inherited {
		ln, err := net.FileListener(os.NewFile(gracefulListenerFd, ""))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

func (srv *graceServer) handleSignals() {
	signal.Notify(srv.signals, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range srv.signals {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("received SIGTERM, draining HTTP server")
			srv.drain()
		case syscall.SIGUSR2:
			Sugar.Info("received SIGUSR2, forking replacement process")
			pid, err := srv.forkReplacement()
			if err != nil {
				Sugar.Errorf("fork replacement failed: %v, continue serving", err)
				continue
			}
			Sugar.Infof("replacement started, pid=%d, draining old server", pid)
			srv.drain()
		}
	}
}

func (srv *graceServer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
	} else {
		Sugar.Info("HTTP server shutdown success")
	}
	close(srv.shutdownDone)
}

func (srv *graceServer) forkReplacement() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is %T, not *net.TCPListener", srv.listener)
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("get listener file: %w", err)
	}

	envs := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != gracefulEnvEntry {
			envs = append(envs, e)
		}
	}
	envs = append(envs, gracefulEnvEntry)

	attr := &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	}
	pid, err := syscall.ForkExec(os.Args[0], os.Args, attr)
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}
