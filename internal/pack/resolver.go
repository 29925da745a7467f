package pack

import (
	"fmt"

	"github.com/fenilsonani/nanogit/internal/metrics"
	"github.com/fenilsonani/nanogit/internal/nanolog"
	"github.com/fenilsonani/nanogit/internal/objects"
)

type resolved struct {
	object  objects.Object
	payload []byte // Serialize() output, used as a base for further deltas
}

// Resolve turns a flat list of decoded pack entries into fully materialized
// objects by repeatedly applying ref-delta entries against whatever their
// base object has already resolved to, until every delta is resolved or no
// further progress can be made.
//
// Unlike the naive fixpoint loop this is ported from — which treated a
// round leaving exactly one delta pending as success and silently dropped
// it — any non-empty, non-progressing pending set here is reported as
// ErrDeltaUnresolved. The object model's reachability guarantee (every
// blob/tree reachable from a commit's tree must be present) does not hold
// if a delta is silently lost.
func Resolve(entries []Entry) ([]objects.Object, error) {
	byHash := make(map[objects.ObjectID]*resolved)
	var pending []Entry

	for _, e := range entries {
		if e.IsDelta() {
			pending = append(pending, e)
			continue
		}

		obj, err := parseWholeObject(e)
		if err != nil {
			return nil, fmt.Errorf("parse pack object: %w", err)
		}
		payload, err := obj.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serialize pack object: %w", err)
		}
		byHash[obj.ID()] = &resolved{object: obj, payload: payload}
		metrics.Default().PackObjects.WithLabelValues("whole").Inc()
	}

	rounds := 0
	for len(pending) > 0 {
		rounds++
		var next []Entry
		resolvedThisRound := 0

		for _, e := range pending {
			base, ok := byHash[e.BaseHash]
			if !ok {
				next = append(next, e)
				continue
			}

			obj, err := objects.ApplyDelta(base.object.Type(), base.payload, e.Delta)
			if err != nil {
				return nil, fmt.Errorf("apply delta against base %s: %w", e.BaseHash.Short(), err)
			}
			payload, err := obj.Serialize()
			if err != nil {
				return nil, fmt.Errorf("serialize resolved delta: %w", err)
			}
			byHash[obj.ID()] = &resolved{object: obj, payload: payload}
			resolvedThisRound++
			metrics.Default().PackObjects.WithLabelValues("delta").Inc()
		}

		nanolog.Log.WithFields(map[string]interface{}{
			"round":    rounds,
			"resolved": resolvedThisRound,
			"pending":  len(next),
		}).Debug("delta resolution round")

		if resolvedThisRound == 0 {
			metrics.Default().DeltaUnresolved.Add(float64(len(next)))
			return nil, fmt.Errorf("%w: %d ref-delta entries never found their base object after %d rounds",
				ErrDeltaUnresolved, len(next), rounds)
		}

		pending = next
	}

	metrics.Default().DeltaRounds.Observe(float64(rounds))

	out := make([]objects.Object, 0, len(byHash))
	for _, r := range byHash {
		out = append(out, r.object)
	}
	return out, nil
}

func parseWholeObject(e Entry) (objects.Object, error) {
	id := objects.ComputeHash(e.Type, e.Payload)
	switch e.Type {
	case objects.TypeBlob:
		return objects.ParseBlob(id, e.Payload), nil
	case objects.TypeTree:
		return objects.ParseTree(id, e.Payload)
	case objects.TypeCommit:
		return objects.ParseCommit(id, e.Payload)
	default:
		return nil, fmt.Errorf("unsupported whole-object type %q", e.Type)
	}
}
