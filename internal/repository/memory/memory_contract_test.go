package memory

import (
	"testing"

	"github.com/maxviazov/scorekeeper-service/internal/repository"
	"github.com/maxviazov/scorekeeper-service/internal/repository/contract"
)

func makeGameRepo(t *testing.T) (repository.GameRepository, func()) {
	return New(), func() {}
}

func makePinger(t *testing.T) (repository.Pinger, func()) {
	return New(), func() {}
}

func TestGameRepository_MemoryContract(t *testing.T) {
	contract.RunGameRepositoryContract(t, makeGameRepo)
}

func TestPinger_MemoryContract(t *testing.T) {
	contract.RunPingerContract(t, makePinger)
}
