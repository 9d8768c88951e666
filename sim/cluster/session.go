package cluster

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/elastic-sim/sim"
	"github.com/inference-sim/elastic-sim/sim/trace"
)

// SessionState is the lifecycle of one arrival.
type SessionState int

const (
	SessionArrived SessionState = iota
	SessionRejected
	SessionAdmitted
	SessionServing
	SessionCompleted
)

func (st SessionState) String() string {
	switch st {
	case SessionArrived:
		return "arrived"
	case SessionRejected:
		return "rejected"
	case SessionAdmitted:
		return "admitted"
	case SessionServing:
		return "serving"
	case SessionCompleted:
		return "completed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(st))
	}
}

// Session is one streaming session. Q is fixed at admission and scores the
// session when it completes.
type Session struct {
	ID          int
	State       SessionState
	ArrivedAt   float64
	Q           float64
	ServiceTime float64
	CompletedAt float64
	MOS         int
	Reason      string
}

// generate is the workload generator process: it sleeps an inter-arrival
// time, handles the arrival, and repeats until the arrival stream ends.
func (s *Simulation) generate(p *sim.Process) {
	var next func()
	next = func() {
		iat, ok := s.arrivals.Next()
		if !ok {
			logrus.Debugf("[t=%10.4f] arrival stream exhausted", s.sched.Now())
			return
		}
		p.Sleep(iat, func() {
			s.arrive()
			next()
		})
	}
	next()
}

// arrive decides one arrival and applies the outcome. Nothing here suspends,
// so the decision and the mutation see the same cluster state.
func (s *Simulation) arrive() {
	now := s.sched.Now()
	s.nextSession++
	sess := &Session{ID: s.nextSession, State: SessionArrived, ArrivedAt: now}
	if s.trace != nil {
		s.sessions = append(s.sessions, sess)
	}
	s.metrics.Arrivals++

	snap := s.cluster.Snapshot()
	d := s.admission.Decide(snap)
	sess.Q, sess.Reason = d.Q, d.Reason
	if s.trace != nil {
		s.trace.RecordAdmission(trace.AdmissionRecord{
			SessionID:          sess.ID,
			Clock:              now,
			Admitted:           d.Admit,
			Reason:             d.Reason,
			Q:                  d.Q,
			ProjectedLoad:      d.ProjectedLoad,
			ActiveUsers:        snap.ActiveUsers,
			AvailableResources: snap.AvailableResources,
			ServerCount:        snap.ServerCount,
		})
	}

	if !d.Admit {
		sess.State = SessionRejected
		s.metrics.Rejected++
		logrus.Debugf("[t=%10.4f] session %d rejected (%s, Q=%.3f, m=%d, k=%d)",
			now, sess.ID, d.Reason, d.Q, snap.AvailableResources, snap.ActiveUsers)
		s.down.Fire()
		return
	}

	s.cluster.reserve()
	sess.State = SessionAdmitted
	s.metrics.Admitted++
	logrus.Debugf("[t=%10.4f] session %d admitted (Q=%.3f, m=%d, k=%d)",
		now, sess.ID, d.Q, s.cluster.AvailableResources(), s.cluster.ActiveUsers())
	s.up.Fire()
	s.sched.Process(fmt.Sprintf("session-%d", sess.ID), func(p *sim.Process) { s.serve(p, sess) })
}

// serve holds the session's unit for its service time, then gives it back.
func (s *Simulation) serve(p *sim.Process, sess *Session) {
	sess.State = SessionServing
	sess.ServiceTime = s.service.Next()
	p.Sleep(sess.ServiceTime, func() {
		now := s.sched.Now()
		s.cluster.release()
		sess.State = SessionCompleted
		sess.CompletedAt = now
		sess.MOS = MOSFromQ(sess.Q)
		s.metrics.recordSession(sess.Q, sess.MOS, now)
		logrus.Debugf("[t=%10.4f] session %d completed (Q=%.3f, MOS=%d)", now, sess.ID, sess.Q, sess.MOS)
		s.up.Fire()
	})
}
