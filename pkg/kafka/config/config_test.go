package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestSplitBrokers(t *testing.T) {
	got := splitBrokers(" a:9092, ,b:9092 ")
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Errorf("splitBrokers() = %v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Brokers:              []string{"localhost:9092"},
		ProducerMaxAttempts:  3,
		ProducerBatchTimeout: time.Millisecond,
		ProducerWriteTimeout: time.Second,
		ProducerRequireAcks:  -1,
		ProducerCompression:  "snappy",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.ProducerCompression = "brotli"
	cfg.ProducerRequireAcks = 2
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}
