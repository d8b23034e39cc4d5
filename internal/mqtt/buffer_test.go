package mqtt

import "testing"

func msg(id byte) outboxMsg {
	return outboxMsg{topic: Topic, payload: []byte{id}, qos: 0}
}

func TestOutboxFIFO(t *testing.T) {
	o := newOutbox(4)

	o.push(msg(1))
	o.push(msg(2))
	o.push(msg(3))

	if o.len() != 3 {
		t.Errorf("len: got %d, want 3", o.len())
	}

	drained := o.drain()
	if len(drained) != 3 {
		t.Fatalf("drained: got %d, want 3", len(drained))
	}
	for i, m := range drained {
		if m.payload[0] != byte(i+1) {
			t.Errorf("position %d: got %d, want %d", i, m.payload[0], i+1)
		}
	}

	if o.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", o.len())
	}
	if o.drain() != nil {
		t.Error("second drain should return nil")
	}
}

func TestOutboxDropsOldestAtBound(t *testing.T) {
	o := newOutbox(3)

	for id := byte(1); id <= 5; id++ {
		o.push(msg(id))
	}

	if o.len() != 3 {
		t.Errorf("len: got %d, want bound 3", o.len())
	}

	drained := o.drain()
	want := []byte{3, 4, 5}
	for i, m := range drained {
		if m.payload[0] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, m.payload[0], want[i])
		}
	}
}

func TestOutboxReuseAfterDrain(t *testing.T) {
	o := newOutbox(2)

	o.push(msg(1))
	o.push(msg(2))
	o.push(msg(3)) // drops 1
	o.drain()

	o.push(msg(9))
	drained := o.drain()
	if len(drained) != 1 || drained[0].payload[0] != 9 {
		t.Errorf("after reuse: got %+v", drained)
	}
}

func TestOutboxPreservesMessageFields(t *testing.T) {
	o := newOutbox(2)
	o.push(outboxMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	m := o.drain()[0]
	if m.topic != TopicSystem || m.qos != 1 || !m.retained {
		t.Errorf("fields lost: %+v", m)
	}
}
