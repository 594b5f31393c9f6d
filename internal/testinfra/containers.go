// Package testinfra starts throwaway Kafka and ksqlDB containers for
// integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	KafkaImage      = "confluentinc/confluent-local:7.6.1"
	KsqlServerImage = "confluentinc/ksqldb-server:0.29.0"

	kafkaAlias = "kafka"
)

// KsqlCluster is a Kafka broker plus a ksqlDB server attached to it, on a
// private docker network.
type KsqlCluster struct {
	Kafka *kafka.KafkaContainer
	Ksql  testcontainers.Container

	// URL is the ksqlDB REST listener reachable from the host.
	URL string

	net *testcontainers.DockerNetwork
}

// StartKsqlCluster starts Kafka and a ksqlDB server wired to it. Callers
// must Terminate the cluster when done.
func StartKsqlCluster(ctx context.Context) (*KsqlCluster, error) {
	net, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create network: %w", err)
	}

	kafkaCtr, err := kafka.Run(ctx,
		KafkaImage,
		kafka.WithClusterID("ksqlpipe-test"),
		network.WithNetwork([]string{kafkaAlias}, net),
	)
	if err != nil {
		net.Remove(ctx) //nolint:errcheck
		return nil, fmt.Errorf("start kafka: %w", err)
	}

	ksqlReq := testcontainers.ContainerRequest{
		Image:        KsqlServerImage,
		ExposedPorts: []string{"8088/tcp"},
		Networks:     []string{net.Name},
		Env: map[string]string{
			"KSQL_BOOTSTRAP_SERVERS":                 kafkaAlias + ":9092",
			"KSQL_LISTENERS":                         "http://0.0.0.0:8088",
			"KSQL_KSQL_SERVICE_ID":                   "ksqlpipe_test_",
			"KSQL_KSQL_STREAMS_AUTO_OFFSET_RESET":    "earliest",
			"KSQL_KSQL_STREAMS_REPLICATION_FACTOR":   "1",
			"KSQL_KSQL_INTERNAL_TOPIC_REPLICAS":      "1",
			"KSQL_KSQL_SINK_REPLICAS":                "1",
			"KSQL_KSQL_LOGGING_PROCESSING_TOPIC_REPLICATION_FACTOR": "1",
		},
		WaitingFor: wait.ForHTTP("/info").
			WithPort("8088/tcp").
			WithStartupTimeout(120 * time.Second),
	}

	ksqlCtr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: ksqlReq,
		Started:          true,
	})
	if err != nil {
		kafkaCtr.Terminate(ctx) //nolint:errcheck
		net.Remove(ctx)         //nolint:errcheck
		return nil, fmt.Errorf("start ksqldb-server: %w", err)
	}

	host, err := ksqlCtr.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve ksqldb host: %w", err)
	}
	port, err := ksqlCtr.MappedPort(ctx, "8088")
	if err != nil {
		return nil, fmt.Errorf("resolve ksqldb port: %w", err)
	}

	return &KsqlCluster{
		Kafka: kafkaCtr,
		Ksql:  ksqlCtr,
		URL:   fmt.Sprintf("http://%s:%s", host, port.Port()),
		net:   net,
	}, nil
}

// Terminate stops both containers and removes the network.
func (c *KsqlCluster) Terminate(ctx context.Context) error {
	var firstErr error
	if c.Ksql != nil {
		if err := c.Ksql.Terminate(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Kafka != nil {
		if err := c.Kafka.Terminate(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.net != nil {
		if err := c.net.Remove(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
