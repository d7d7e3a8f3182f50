package models_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/rengarajkamatchinathan/ig-fe/models"
)

var _ = Describe("OperationKind", func() {

	Describe("Parsing a kind from its wire name", func() {
		It("Should accept every known kind", func() {
			for _, kind := range OperationKinds {
				parsed, err := ParseOperationKind(string(kind))
				Expect(err).NotTo(HaveOccurred())
				Expect(parsed).To(Equal(kind))
			}
		})

		It("Should reject names outside the known set", func() {
			_, err := ParseOperationKind("refresh")
			Expect(err).To(HaveOccurred())
		})

		It("Should reject the empty string", func() {
			_, err := ParseOperationKind("")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Prerequisite ordering", func() {
		It("Should give validate no prerequisites", func() {
			Expect(Prerequisites[OperationValidate]).To(BeEmpty())
		})

		It("Should require validate before plan", func() {
			Expect(Prerequisites[OperationPlan]).To(Equal([]OperationKind{OperationValidate}))
		})

		It("Should require validate then plan before compliance and apply", func() {
			expected := []OperationKind{OperationValidate, OperationPlan}
			Expect(Prerequisites[OperationCompliance]).To(Equal(expected))
			Expect(Prerequisites[OperationApply]).To(Equal(expected))
		})

		It("Should require only validate before destroy", func() {
			Expect(Prerequisites[OperationDestroy]).To(Equal([]OperationKind{OperationValidate}))
		})

		It("Should cover every known kind", func() {
			for _, kind := range OperationKinds {
				_, ok := Prerequisites[kind]
				Expect(ok).To(BeTrue())
			}
		})
	})
})

var _ = Describe("OperationStatus transitions", func() {

	It("Should allow idle work to start", func() {
		Expect(ValidStatusTransition(StatusIdle, StatusRunning)).To(BeTrue())
	})

	It("Should allow running work to settle either way", func() {
		Expect(ValidStatusTransition(StatusRunning, StatusSucceeded)).To(BeTrue())
		Expect(ValidStatusTransition(StatusRunning, StatusFailed)).To(BeTrue())
	})

	It("Should allow settled work to restart or reset", func() {
		for _, settled := range []OperationStatus{StatusSucceeded, StatusFailed} {
			Expect(ValidStatusTransition(settled, StatusRunning)).To(BeTrue())
			Expect(ValidStatusTransition(settled, StatusIdle)).To(BeTrue())
		}
	})

	It("Should refuse settling work that never ran", func() {
		Expect(ValidStatusTransition(StatusIdle, StatusSucceeded)).To(BeFalse())
		Expect(ValidStatusTransition(StatusIdle, StatusFailed)).To(BeFalse())
	})

	It("Should refuse restarting work that is already running", func() {
		Expect(ValidStatusTransition(StatusRunning, StatusRunning)).To(BeFalse())
	})
})
