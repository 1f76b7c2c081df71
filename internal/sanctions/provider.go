package sanctions

import (
	"context"

	"github.com/banking/sanctions-screening/internal/domain"
)

// StaticProvider serves a fixed list of entries
type StaticProvider struct {
	entries []domain.SanctionsEntry
}

// NewStaticProvider creates a provider over a fixed list
func NewStaticProvider(entries []domain.SanctionsEntry) *StaticProvider {
	return &StaticProvider{entries: entries}
}

// Load returns a copy of the configured entries
func (p *StaticProvider) Load(_ context.Context) ([]domain.SanctionsEntry, error) {
	out := make([]domain.SanctionsEntry, len(p.entries))
	copy(out, p.entries)
	return out, nil
}

// SampleEntries returns the development reference list
func SampleEntries() []domain.SanctionsEntry {
	return []domain.SanctionsEntry{
		{
			ID: "OFAC-SDGT-001", ListName: "OFAC SDN List", Source: "OFAC", Country: "United States",
			Name: "Osama bin Laden", Aliases: []string{"Usama bin Laden", "Osama bin Ladin"},
			DateOfBirth: "1957-03-10", Nationality: "Saudi Arabian", EntityType: domain.EntityTypeIndividual,
			DesignationDate: "1999-01-20", Reason: "Terrorism - Leader of al-Qaeda",
		},
		{
			ID: "OFAC-SDGT-002", ListName: "OFAC SDN List", Source: "OFAC", Country: "United States",
			Name: "Ayman al-Zawahiri", Aliases: []string{"Ayman al-Zawahri", "Dr. Ayman al-Zawahiri"},
			DateOfBirth: "1951-06-19", Nationality: "Egyptian", EntityType: domain.EntityTypeIndividual,
			DesignationDate: "2001-09-23", Reason: "Terrorism - al-Qaeda leadership",
		},
		{
			ID: "UN-001", ListName: "UN Security Council", Source: "UN", Country: "International",
			Name: "Kim Jong-un", Aliases: []string{"Kim Jong Un", "Kim Jong Eun"},
			DateOfBirth: "1984-01-08", Nationality: "North Korean", EntityType: domain.EntityTypeIndividual,
			DesignationDate: "2017-12-22", Reason: "Nuclear proliferation - DPRK leadership",
		},
		{
			ID: "EU-001", ListName: "EU Sanctions", Source: "EU", Country: "European Union",
			Name: "Vladimir Putin", Aliases: []string{"Vladimir Vladimirovich Putin"},
			DateOfBirth: "1952-10-07", Nationality: "Russian", EntityType: domain.EntityTypeIndividual,
			DesignationDate: "2022-02-25", Reason: "Aggression against Ukraine",
		},
		{
			ID: "OFAC-SDGT-003", ListName: "OFAC SDN List", Source: "OFAC", Country: "United States",
			Name: "Hezbollah", Aliases: []string{"Hizballah", "Party of God"},
			EntityType: domain.EntityTypeOrganization, DesignationDate: "1997-10-31",
			Reason: "Terrorism - Foreign terrorist organization",
		},
		{
			ID: "OFAC-SDGT-004", ListName: "OFAC SDN List", Source: "OFAC", Country: "United States",
			Name: "Hamas", Aliases: []string{"Islamic Resistance Movement"},
			EntityType: domain.EntityTypeOrganization, DesignationDate: "1997-10-31",
			Reason: "Terrorism - Foreign terrorist organization",
		},
		{
			ID: "UN-002", ListName: "UN Security Council", Source: "UN", Country: "International",
			Name: "Taliban", Aliases: []string{"Islamic Emirate of Afghanistan"},
			EntityType: domain.EntityTypeOrganization, DesignationDate: "1999-10-15",
			Reason: "Terrorism - Taliban regime",
		},
		{
			ID: "OFAC-SDNT-001", ListName: "OFAC SDN List", Source: "OFAC", Country: "United States",
			Name: "John Smith", Aliases: []string{"Johnny Smith", "J. Smith"},
			DateOfBirth: "1980-05-15", Nationality: "American", PassportNumber: "A12345678",
			EntityType: domain.EntityTypeIndividual, DesignationDate: "2023-01-15",
			Reason: "Money laundering - Financial crimes",
		},
		{
			ID: "EU-002", ListName: "EU Sanctions", Source: "EU", Country: "European Union",
			Name: "Maria Garcia", Aliases: []string{"Maria G. Rodriguez"},
			DateOfBirth: "1975-12-03", Nationality: "Spanish", PassportNumber: "ESP78901234",
			EntityType: domain.EntityTypeIndividual, DesignationDate: "2022-06-10",
			Reason: "Corruption - Public office abuse",
		},
		{
			ID: "UK-001", ListName: "UK Sanctions", Source: "UK", Country: "United Kingdom",
			Name: "Robert Johnson", Aliases: []string{"Bob Johnson", "R. Johnson"},
			DateOfBirth: "1965-08-22", Nationality: "British", PassportNumber: "GBP45678901",
			EntityType: domain.EntityTypeIndividual, DesignationDate: "2023-03-20",
			Reason: "Human rights violations",
		},
	}
}
