package main

import (
	"fmt"
	"sort"

	"gopkg.in/ini.v1"

	auxesis "auxesis/pkg/auxesis"
)

// Profile is a named run preset from an INI file. Each section is one
// profile:
//
//	[xor-quick]
//	experiment = xor
//	generations = 200
//	seed = 42
//	config = configs/xor.json
type Profile struct {
	Name           string
	Experiment     string
	Config         string
	Generations    int
	Seed           int64
	ContinueFrom   string
	WriteArtifacts bool
}

func (p Profile) runRequest() auxesis.RunRequest {
	return auxesis.RunRequest{
		Experiment:     p.Experiment,
		ConfigPath:     p.Config,
		MaxGenerations: p.Generations,
		Seed:           p.Seed,
		ContinueFrom:   p.ContinueFrom,
		WriteArtifacts: p.WriteArtifacts,
	}
}

func loadProfiles(path string) ([]Profile, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles %s: %w", path, err)
	}

	var profiles []Profile
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		p := Profile{Name: section.Name(), WriteArtifacts: true}
		if key := section.Key("experiment"); key.String() != "" {
			p.Experiment = key.String()
		}
		p.Config = section.Key("config").String()
		p.Generations = section.Key("generations").MustInt(0)
		p.Seed = section.Key("seed").MustInt64(0)
		p.ContinueFrom = section.Key("continue_from").String()
		if section.HasKey("write_artifacts") {
			p.WriteArtifacts = section.Key("write_artifacts").MustBool(true)
		}
		if p.Experiment == "" {
			return nil, fmt.Errorf("profile %s: experiment is required", p.Name)
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func loadProfile(path, name string) (Profile, error) {
	profiles, err := loadProfiles(path)
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("profile not found in %s: %s", path, name)
}
