package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/client"
	"github.com/rengarajkamatchinathan/ig-fe/credentials"
	"github.com/rengarajkamatchinathan/ig-fe/models"
)

// ErrChainInFlight is returned when a chain is requested while another one
// is still running. The in-flight chain is never aborted; new ones are
// simply refused.
var ErrChainInFlight = errors.New("an operation chain is already in flight")

// ChunkStream is the pull interface the engine consumes, satisfied by
// client.Stream.
type ChunkStream interface {
	Next() (chunk string, done bool, err error)
	Close() error
}

// OperationStreamer starts one remote operation and exposes its output.
type OperationStreamer interface {
	RunOperation(ctx context.Context, kind models.OperationKind, req client.OperationRequest) (ChunkStream, error)
}

// CredentialSelector picks the credential that authorizes a chain step.
type CredentialSelector interface {
	Resolve(ctx context.Context, orgID int, provider models.CloudProvider) credentials.Selection
}

type apiStreamer struct {
	api *client.Client
}

func (a apiStreamer) RunOperation(ctx context.Context, kind models.OperationKind, req client.OperationRequest) (ChunkStream, error) {
	stream, err := a.api.RunOperation(ctx, kind, req)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// NewAPIStreamer adapts the backend client to the engine's interface.
func NewAPIStreamer(api *client.Client) OperationStreamer {
	return apiStreamer{api: api}
}

// RunContext is the immutable per-chain context threaded into the engine:
// which workspace to act on, whose credentials to use, and the file set to
// submit. Nothing here is ambient state.
type RunContext struct {
	ProjectID   string
	WorkspaceID string
	OrgID       int
	Provider    models.CloudProvider
	Files       models.FileSet
}

// OperationService is the streaming execution engine. It owns the status
// tracker and the output buffer for the duration of a chain, executes chain
// steps strictly in order, and halts the remainder on the first failure.
// RunChain settles normally even when steps fail; failure is communicated
// through the tracker and the output buffer.
type OperationService struct {
	api     OperationStreamer
	creds   CredentialSelector
	tracker *StatusTracker
	output  *OutputBuffer
}

func NewOperationService(api OperationStreamer, creds CredentialSelector, tracker *StatusTracker, output *OutputBuffer) *OperationService {
	return &OperationService{
		api:     api,
		creds:   creds,
		tracker: tracker,
		output:  output,
	}
}

func (s *OperationService) Tracker() *StatusTracker {
	return s.tracker
}

func (s *OperationService) Output() *OutputBuffer {
	return s.output
}

// RunChain resolves the prerequisite chain for target and executes it. It
// returns the computed chain, or ErrChainInFlight / an unknown-kind error
// when refused before any execution. Step failures do not surface as an
// error here.
func (s *OperationService) RunChain(ctx context.Context, target models.OperationKind, rc RunContext) ([]models.OperationKind, error) {
	logger := log.WithFields(log.Fields{
		"topic":     "igfe",
		"package":   "services",
		"event":     "run_chain",
		"target":    target,
		"workspace": rc.WorkspaceID,
	})

	// Admission is atomic: the reservation holds from here until the chain
	// settles, including the credential resolution before the first step.
	if err := s.tracker.BeginChain(); err != nil {
		logger.Warn("chain refused while another is in flight")
		return nil, err
	}
	defer s.tracker.EndChain()

	chain, err := ComputeChain(target, s.tracker.Snapshot())
	if err != nil {
		return nil, err
	}

	// One buffer for the whole chain so output from every step reads as a
	// single log.
	s.output.Reset()

	if len(chain) > 1 {
		names := make([]string, len(chain))
		for i, kind := range chain {
			names[i] = string(kind)
		}
		s.output.Append(fmt.Sprintf("Running: %s\n\n", strings.Join(names, " -> ")))
	}

	for _, kind := range chain {
		if !s.runStep(ctx, kind, rc) {
			logger.WithField("failed", kind).Info("chain halted on failure")
			break
		}
	}

	return chain, nil
}

func (s *OperationService) runStep(ctx context.Context, kind models.OperationKind, rc RunContext) bool {
	logger := log.WithFields(log.Fields{
		"topic":     "igfe",
		"package":   "services",
		"event":     "run_step",
		"operation": kind,
	})

	selection := s.creds.Resolve(ctx, rc.OrgID, rc.Provider)
	if !selection.Resolved() {
		s.failStep(kind, fmt.Sprintf("no credential available: %s", selection.Reason))
		return false
	}

	if err := s.tracker.SetRunning(kind); err != nil {
		s.failStep(kind, err.Error())
		return false
	}

	stream, err := s.api.RunOperation(ctx, kind, client.OperationRequest{
		ProjectID:    rc.ProjectID,
		WorkspaceID:  rc.WorkspaceID,
		TfFiles:      rc.Files,
		CredentialID: selection.CredentialID,
	})
	if err != nil {
		logger.Error(err)
		s.failStep(kind, err.Error())
		return false
	}
	defer stream.Close()

	for {
		chunk, done, err := stream.Next()
		if err != nil {
			// Partial output already appended stays; only the failure line
			// is added.
			logger.Error(err)
			s.failStep(kind, err.Error())
			return false
		}
		if chunk != "" {
			s.output.Append(chunk)
		}
		if done {
			break
		}
	}

	s.tracker.SetResult(kind, true)
	logger.Debug("operation succeeded")
	return true
}

func (s *OperationService) failStep(kind models.OperationKind, message string) {
	s.output.Append(fmt.Sprintf("Error: %s\n", message))
	s.tracker.SetResult(kind, false)
}
