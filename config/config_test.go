package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/config"
)

var _ = Describe("Config", func() {
	Describe("Default", func() {
		It("should provide a valid configuration", func() {
			cfg := config.Default()
			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.MemBase).To(Equal(uint64(0x8000_0000)))
			Expect(cfg.BatchWidth).To(Equal(8))
		})
	})

	Describe("Validate", func() {
		It("should reject a zero memory size", func() {
			cfg := config.Default()
			cfg.MemSize = 0
			Expect(cfg.Validate()).ToNot(Succeed())
		})

		It("should reject a misaligned memory base", func() {
			cfg := config.Default()
			cfg.MemBase = 0x8000_0002
			Expect(cfg.Validate()).ToNot(Succeed())
		})

		It("should reject a non-positive batch width", func() {
			cfg := config.Default()
			cfg.BatchWidth = 0
			Expect(cfg.Validate()).ToNot(Succeed())
		})
	})

	Describe("Save and Load", func() {
		It("should round-trip through a JSON file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "config.json")

			cfg := config.Default()
			cfg.MemSize = 4096
			cfg.BatchWidth = 16
			Expect(cfg.Save(path)).To(Succeed())

			loaded, err := config.Load(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("should keep defaults for fields absent from the file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "config.json")
			Expect(os.WriteFile(path, []byte(`{"batch_width": 4}`), 0644)).To(Succeed())

			loaded, err := config.Load(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded.BatchWidth).To(Equal(4))
			Expect(loaded.MemSize).To(Equal(config.Default().MemSize))
		})

		It("should fail on a missing file", func() {
			_, err := config.Load(filepath.Join(GinkgoT().TempDir(), "missing.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should fail on malformed JSON", func() {
			path := filepath.Join(GinkgoT().TempDir(), "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should return an independent copy", func() {
			cfg := config.Default()
			clone := cfg.Clone()
			clone.BatchWidth = 64

			Expect(cfg.BatchWidth).To(Equal(8))
			Expect(clone.BatchWidth).To(Equal(64))
		})
	})
})
