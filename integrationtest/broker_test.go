package integrationtest

import (
	"context"
	"fmt"
	"net"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type Broker interface {
	Init() error
	Close() error
	BootstrapServers() []string
}

type RedpandaBroker struct {
	RedpandaVersion  string
	bootstrapServers []string
	testcontainer    testcontainers.Container
}

func (b *RedpandaBroker) Init() error {
	ctx := context.Background()
	port, err := GetFreePort()
	if err != nil {
		return err
	}
	req := testcontainers.ContainerRequest{
		Image:      fmt.Sprintf("docker.redpanda.com/redpandadata/redpanda:%s", b.RedpandaVersion),
		WaitingFor: wait.ForLog("Successfully started Redpanda!"),
		User:       "root:root",
		Cmd: []string{
			"redpanda",
			"start",
			"--smp", "1",
			"--reserve-memory", "0M",
			"--overprovisioned",
			"--node-id", "0",
			"--kafka-addr", fmt.Sprintf("OUTSIDE://0.0.0.0:%d", port),
		},
		// Fixed port mapping, the advertised address must match.
		ExposedPorts: []string{fmt.Sprintf("%d:%d/tcp", port, port)},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return err
	}

	hostIP, err := container.Host(ctx)
	if err != nil {
		return err
	}
	mappedPort, err := container.MappedPort(ctx, nat.Port(fmt.Sprintf("%d", port)))
	if err != nil {
		return err
	}

	b.bootstrapServers = []string{fmt.Sprintf("%s:%d", hostIP, mappedPort.Int())}
	b.testcontainer = container
	return nil
}

func (b *RedpandaBroker) Close() error {
	return b.testcontainer.Terminate(context.Background())
}

func (b *RedpandaBroker) BootstrapServers() []string {
	return b.bootstrapServers
}

// GetFreePort asks the kernel for a free open port that is ready to use.
func GetFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
