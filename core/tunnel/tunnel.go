package tunnel

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Tunnel forwards a local loopback port to a remote address through an SSH connection.
type Tunnel struct {
	client   *ssh.Client
	listener net.Listener
	remote   string
	logger   *zap.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Open dials the bastion and starts forwarding 127.0.0.1:<random> to remoteHost:remotePort.
func Open(cfg Config, remoteHost string, remotePort int, logger *zap.Logger) (*Tunnel, error) {
	clientCfg, err := clientConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ssh host %s: %w", addr, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to open local tunnel endpoint: %w", err)
	}

	t := &Tunnel{
		client:   client,
		listener: listener,
		remote:   net.JoinHostPort(remoteHost, strconv.Itoa(remotePort)),
		logger:   logger,
	}
	t.wg.Add(1)
	go t.serve()

	logger.Info("SSH tunnel established",
		zap.String("ssh_host", addr),
		zap.String("local", listener.Addr().String()),
		zap.String("remote", t.remote),
	)
	return t, nil
}

// LocalAddr returns the loopback host and port clients should connect to.
func (t *Tunnel) LocalAddr() (string, int) {
	tcp := t.listener.Addr().(*net.TCPAddr)
	return tcp.IP.String(), tcp.Port
}

// Close stops accepting connections, waits for active forwards and closes the SSH client.
func (t *Tunnel) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.listener.Close()
		if cErr := t.client.Close(); cErr != nil && err == nil {
			err = cErr
		}
		t.wg.Wait()
	})
	return err
}

func (t *Tunnel) serve() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.logger.Warn("Tunnel accept failed", zap.Error(err))
			}
			return
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.client.Dial("tcp", t.remote)
	if err != nil {
		t.logger.Error("Tunnel dial to remote failed", zap.String("remote", t.remote), zap.Error(err))
		return
	}
	defer remote.Close()

	var pipes sync.WaitGroup
	pipes.Add(2)
	go func() {
		defer pipes.Done()
		_, _ = io.Copy(remote, local)
		closeWrite(remote)
	}()
	go func() {
		defer pipes.Done()
		_, _ = io.Copy(local, remote)
		closeWrite(local)
	}()
	pipes.Wait()
}

func closeWrite(c net.Conn) {
	if cw, ok := c.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
}

func clientConfig(cfg Config, logger *zap.Logger) (*ssh.ClientConfig, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, errors.New("tunnel host and user are required")
	}

	var auth []ssh.AuthMethod
	if cfg.KeyFile != "" {
		pem, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if len(auth) == 0 {
		return nil, errors.New("tunnel requires a password or key file")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		hostKeyCallback = cb
	} else {
		logger.Warn("SSH host key verification disabled; set TUNNEL_KNOWN_HOSTS to enable it")
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         time.Duration(timeout) * time.Second,
	}, nil
}
