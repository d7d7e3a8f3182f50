package sweeper_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/rengarajkamatchinathan/ig-fe/sweeper"
)

type countingTracker struct {
	mutex     sync.Mutex
	sweeps    int
	cooldowns []time.Duration
}

func (t *countingTracker) SweepSucceeded(cooldown time.Duration) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.sweeps++
	t.cooldowns = append(t.cooldowns, cooldown)
	return 1
}

func (t *countingTracker) count() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.sweeps
}

func (t *countingTracker) lastCooldown() time.Duration {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if len(t.cooldowns) == 0 {
		return 0
	}
	return t.cooldowns[len(t.cooldowns)-1]
}

var _ = Describe("StatusSweeper", func() {

	var (
		tracker *countingTracker
		sweeper *StatusSweeper
		err     error
	)

	BeforeEach(func() {
		tracker = &countingTracker{}
	})

	Describe("Creating a sweeper", func() {
		It("Should reject an unparsable interval", func() {
			_, err = NewStatusSweeper("often", "1s", tracker)
			Expect(err).To(HaveOccurred())
		})

		It("Should reject an unparsable cooldown", func() {
			_, err = NewStatusSweeper("10ms", "eventually", tracker)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Sweeping on the interval", func() {
		BeforeEach(func() {
			sweeper, err = NewStatusSweeper("10ms", "1ms", tracker)
			Expect(err).NotTo(HaveOccurred())
			sweeper.StartSweeping()
		})

		AfterEach(func() {
			sweeper.Stop()
		})

		It("Should sweep repeatedly with the configured cooldown", func() {
			Eventually(tracker.count).Should(BeNumerically(">=", 2))
			Expect(tracker.lastCooldown()).To(Equal(1 * time.Millisecond))
		})
	})

	Describe("Stopping the sweeper", func() {
		It("Should stop scheduling sweeps", func() {
			sweeper, err = NewStatusSweeper("10ms", "1ms", tracker)
			Expect(err).NotTo(HaveOccurred())
			sweeper.StartSweeping()

			Eventually(tracker.count).Should(BeNumerically(">=", 1))
			sweeper.Stop()

			settled := tracker.count()
			Consistently(tracker.count, "50ms", "10ms").Should(BeNumerically("<=", settled+1))
		})
	})
})
