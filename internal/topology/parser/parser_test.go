package parser

import "testing"

const sampleTopology = `
apiVersion: brpl/v1
kind: Topology
metadata:
  name: two-parent-demo
spec:
  tickIntervalMillis: 1000
  ticks: 10
  dags:
    - id: 1
      initialRank: 256
      queueCapacity: ${QUEUE_CAPACITY}
      parents:
        - id: 1
          initialRank: 256
          linkMetric:
            base: 10
`

func TestParseSubstitutesVariables(t *testing.T) {
	p := New(map[string]string{"QUEUE_CAPACITY": "16"})

	topo, err := p.Parse([]byte(sampleTopology))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got := topo.Spec.DAGs[0].QueueCapacity; got != 16 {
		t.Fatalf("QueueCapacity = %d, want 16", got)
	}
}

func TestParseFallsBackToEnvironment(t *testing.T) {
	t.Setenv("QUEUE_CAPACITY", "32")
	p := New(nil)

	topo, err := p.Parse([]byte(sampleTopology))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got := topo.Spec.DAGs[0].QueueCapacity; got != 32 {
		t.Fatalf("QueueCapacity = %d, want 32 (from environment)", got)
	}
}

func TestParseLeavesUnresolvedVariablesLiteral(t *testing.T) {
	p := New(nil)
	_, err := p.Parse([]byte(sampleTopology))
	if err == nil {
		t.Fatal("expected a YAML parse error from the unresolved ${QUEUE_CAPACITY} placeholder")
	}
}
