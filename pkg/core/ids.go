package core

import (
	"fmt"

	"github.com/google/uuid"
)

// JobID identifies a job across all of its tasks.
type JobID uuid.UUID

// JobVertexID identifies one vertex (operator chain) of a job graph.
type JobVertexID uuid.UUID

// ChannelID identifies a spill channel owned by an IOManager.
type ChannelID uuid.UUID

func NewJobID() JobID {
	return JobID(uuid.New())
}

func NewJobVertexID() JobVertexID {
	return JobVertexID(uuid.New())
}

func NewChannelID() ChannelID {
	return ChannelID(uuid.New())
}

func ParseJobID(s string) (JobID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return JobID{}, fmt.Errorf("invalid job id %q: %w", s, err)
	}
	return JobID(id), nil
}

func ParseJobVertexID(s string) (JobVertexID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return JobVertexID{}, fmt.Errorf("invalid job vertex id %q: %w", s, err)
	}
	return JobVertexID(id), nil
}

func (id JobID) String() string {
	return uuid.UUID(id).String()
}

func (id JobVertexID) String() string {
	return uuid.UUID(id).String()
}

func (id ChannelID) String() string {
	return uuid.UUID(id).String()
}
