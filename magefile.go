//go:build mage
// +build mage

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var Default = Build

var (
	buildDir   = "bin"
	binName    = "stattop"
	remoteDir  = "stattop"
	agentAddr  = ":8082"
	targetOS   = envOr("STATTOP_GOOS", "linux")
	targetArch = envOr("STATTOP_GOARCH", "arm64")
)

// Builds stattop for this machine
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", filepath.Join(buildDir, binName), ".")
}

// Runs the test suite
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Removes build output
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(buildDir)
}

type Agent mg.Namespace

// Cross compiles stattop for the monitored host (STATTOP_GOOS/STATTOP_GOARCH, default linux/arm64)
func (Agent) Build() error {
	fmt.Printf("Building for %s/%s...\n", targetOS, targetArch)
	env := map[string]string{
		"GOOS":   targetOS,
		"GOARCH": targetArch,
	}
	return sh.RunWithV(env, "go", "build", "-o", agentBinary(), ".")
}

// Copies the cross compiled binary to host over SSH
func (Agent) Deploy(host string, username string) error {
	mg.Deps(Agent.Build)
	connStr := fmt.Sprintf("%s@%s", username, host)
	deployPath := "/home/" + username + "/" + remoteDir
	fmt.Printf("Copying binary via SCP to %s:%s\n", connStr, deployPath)

	if err := sh.Run("ssh", connStr, "mkdir -p", deployPath); err != nil {
		return fmt.Errorf("failed to create deploy path on host: %w", err)
	}
	if err := sh.Run("scp", agentBinary(), fmt.Sprintf("%s:%s/%s", connStr, deployPath, binName)); err != nil {
		return fmt.Errorf("failed to deploy to host: %w", err)
	}
	return nil
}

// Deploys and runs `stattop agent` on host, blocking until it exits or Ctrl-C
func (Agent) Start(host string, username string) error {
	mg.Deps(mg.F(Agent.Deploy, host, username))
	client, err := sshClient(username, host)
	if err != nil {
		return fmt.Errorf("failed to create SSH client: %w", err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	command := fmt.Sprintf("~/%s/%s agent --listen %s", remoteDir, binName, agentAddr)
	if err := session.Start(command); err != nil {
		return fmt.Errorf("failed to start agent on host: %w", err)
	}
	go func() {
		sig := <-sigChan
		fmt.Println("Received signal:", sig)
		session.Signal(ssh.SIGTERM)
		// a second signal kills it
		<-sigChan
		fmt.Println("Force killing agent...")
		session.Signal(ssh.SIGKILL)
		session.Close()
		os.Exit(1)
	}()

	session.Stdout = os.Stdout
	session.Stderr = os.Stderr
	err = session.Wait()
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitStatus() {
		case 143, 130:
			fmt.Println("Agent stopped")
			return nil
		default:
			return fmt.Errorf("agent exited with unexpected status %d", exitErr.ExitStatus())
		}
	}
	if err != nil {
		return fmt.Errorf("failed to wait for agent to exit: %w", err)
	}
	return nil
}

func agentBinary() string {
	return filepath.Join(buildDir, targetOS+"-"+targetArch, binName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sshClient(user, host string) (*ssh.Client, error) {
	var authMethods []ssh.AuthMethod

	conn, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
	if err == nil {
		signers, err := agent.NewClient(conn).Signers()
		if err == nil {
			authMethods = append(authMethods, ssh.PublicKeys(preferRSASHA2(signers)...))
		}
	}
	if len(authMethods) == 0 {
		return nil, errors.New("no SSH keys available from SSH_AUTH_SOCK")
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // Dev only.
	}
	return ssh.Dial("tcp", net.JoinHostPort(host, "22"), config)
}

// preferRSASHA2 makes RSA keys sign with SHA-2, which current sshd requires
func preferRSASHA2(signers []ssh.Signer) []ssh.Signer {
	var out []ssh.Signer
	for _, signer := range signers {
		if signer.PublicKey().Type() == ssh.KeyAlgoRSA {
			if algSigner, ok := signer.(ssh.AlgorithmSigner); ok {
				if mas, err := ssh.NewSignerWithAlgorithms(algSigner, []string{
					ssh.KeyAlgoRSASHA256,
					ssh.KeyAlgoRSASHA512,
				}); err == nil {
					out = append(out, mas)
					continue
				}
			}
		}
		out = append(out, signer)
	}
	return out
}
