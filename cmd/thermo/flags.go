package main

import (
	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/spf13/cobra"
)

type personFlags struct {
	sex    string
	age    float64
	height float64
	mass   float64
}

func (p *personFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.sex, "sex", "male", "Sex: male or female")
	cmd.Flags().Float64Var(&p.age, "age", 0, "Age in years")
	cmd.Flags().Float64Var(&p.height, "height", 0, "Height in cm")
	cmd.Flags().Float64Var(&p.mass, "mass", 0, "Body mass in kg")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("mass")
}

func (p *personFlags) features() (domain.BiophysicalFeatures, error) {
	sex, err := domain.ParseSex(p.sex)
	if err != nil {
		return domain.BiophysicalFeatures{}, err
	}
	person := domain.BiophysicalFeatures{Sex: sex, Age: p.age, HeightCm: p.height, MassKg: p.mass}
	return person, person.Validate()
}

type envFlags struct {
	temp     float64
	humidity float64
}

func (e *envFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&e.temp, "temp", 0, "Ambient temperature in °C")
	cmd.Flags().Float64Var(&e.humidity, "humidity", 0, "Relative humidity in %")
	_ = cmd.MarkFlagRequired("temp")
	_ = cmd.MarkFlagRequired("humidity")
}

func (e *envFlags) features() (domain.EnvironmentalFeatures, error) {
	env := domain.EnvironmentalFeatures{AmbientTemp: e.temp, Humidity: e.humidity}
	return env, env.Validate()
}
