// SPDX-License-Identifier: MIT
// File: hcl.go
// Role: HCL front end for Configuration.
//
//	problem       = "team_orienteering"
//	start_point   = 1
//	walking_speed = 4
//	arrival       = "09:00"
//	tour_duration = "6h"
//	relaxed       = ["TimeWindows"]
//
//	stage "nearest_neighbor" {
//	  parameters = { can_do_improvements = true }
//	  stage "lin_kernighan" {
//	    parameters = { lk_max_steps = 5 }
//	  }
//	}
//
// Stage blocks nest to any depth. Parameter objects are decoded through cty so a
// single object can mix numbers, booleans and duration strings.

package config

import (
	"fmt"
	"math/big"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/Fs0ociety/CityScover-sub000/stageflow"
)

// hclFile is the top-level document schema. Every attribute is optional so a file
// can override only part of Default.
type hclFile struct {
	Problem      *string     `hcl:"problem,optional"`
	PointsCount  *int        `hcl:"points_count,optional"`
	TourCategory *string     `hcl:"tour_category,optional"`
	StartPoint   *int        `hcl:"start_point,optional"`
	WalkingSpeed *float64    `hcl:"walking_speed,optional"`
	Arrival      *string     `hcl:"arrival,optional"`
	TourDuration *string     `hcl:"tour_duration,optional"`
	Relaxed      []string    `hcl:"relaxed,optional"`
	Seed         *int64      `hcl:"seed,optional"`
	Stages       []*hclStage `hcl:"stage,block"`
}

// hclStage is one stage block; children are nested stage blocks.
type hclStage struct {
	Algorithm    string         `hcl:"algorithm,label"`
	RunningCount *int           `hcl:"running_count,optional"`
	Parameters   hcl.Expression `hcl:"parameters,optional"`
	Stages       []*hclStage    `hcl:"stage,block"`
}

// Load parses the HCL file at path on top of Default.
func Load(path string) (*Configuration, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", path, diags)
	}

	return decode(f, path)
}

// Parse decodes HCL source on top of Default. name is used in diagnostics.
func Parse(src []byte, name string) (*Configuration, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", name, diags)
	}

	return decode(f, name)
}

func decode(f *hcl.File, name string) (*Configuration, error) {
	var doc hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %w", name, diags)
	}

	cfg := Default()
	if doc.Problem != nil {
		cfg.Problem = *doc.Problem
	}
	if doc.PointsCount != nil {
		cfg.PointsCount = *doc.PointsCount
	}
	if doc.TourCategory != nil {
		cfg.TourCategory = *doc.TourCategory
	}
	if doc.StartPoint != nil {
		cfg.StartPoint = *doc.StartPoint
	}
	if doc.WalkingSpeed != nil {
		cfg.WalkingSpeed = *doc.WalkingSpeed
	}
	if doc.Arrival != nil {
		d, err := ParseClock(*doc.Arrival)
		if err != nil {
			return nil, err
		}
		cfg.Arrival = d
	}
	if doc.TourDuration != nil {
		d, err := time.ParseDuration(*doc.TourDuration)
		if err != nil {
			return nil, fmt.Errorf("%w: tour_duration %q", ErrInvalid, *doc.TourDuration)
		}
		cfg.TourDuration = d
	}
	if doc.Relaxed != nil {
		cfg.Relaxed = doc.Relaxed
	}
	if doc.Seed != nil {
		cfg.Seed = *doc.Seed
	}

	for _, s := range doc.Stages {
		flow, err := s.flow(s.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
		cfg.Stages = append(cfg.Stages, flow)
	}

	return cfg, nil
}

// flow converts a stage block and its children. path names the block in errors.
func (s *hclStage) flow(path string) (*stageflow.Flow, error) {
	alg, err := stageflow.ParseAlgorithmType(s.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", path, err)
	}
	params, err := decodeParameters(s.Parameters)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", path, err)
	}
	f := stageflow.New(alg, params)
	if s.RunningCount != nil {
		f.RunningCount = *s.RunningCount
	}
	for _, child := range s.Stages {
		cf, err := child.flow(path + "/" + child.Algorithm)
		if err != nil {
			return nil, err
		}
		f.Children = append(f.Children, cf)
	}

	return f, nil
}

// decodeParameters evaluates a parameters object into an ordered parameter set.
// Keys follow the object's own (lexical) order.
func decodeParameters(expr hcl.Expression) (*stageflow.Parameters, error) {
	params := stageflow.NewParameters()
	if expr == nil {
		return params, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return params, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("%w: parameters must be an object, have %s", stageflow.ErrWrongKind, ty.FriendlyName())
	}

	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		code, err := stageflow.ParseParameterCode(k.AsString())
		if err != nil {
			return nil, err
		}
		pv, err := ctyToValue(code, v)
		if err != nil {
			return nil, err
		}
		params.Set(code, pv)
	}

	return params, nil
}

// ctyToValue converts one attribute value to the kind code expects.
func ctyToValue(code stageflow.ParameterCode, v cty.Value) (stageflow.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return stageflow.Value{}, fmt.Errorf("%w: %s is null", stageflow.ErrWrongKind, code)
	}
	want := code.Kind()
	switch ty := v.Type(); {
	case ty.Equals(cty.Number):
		bf := v.AsBigFloat()
		if want == stageflow.KindFloat {
			f, _ := bf.Float64()
			return stageflow.Float(f), nil
		}
		if !bf.IsInt() {
			return stageflow.Value{}, fmt.Errorf("%w: %s wants %s, have %s", stageflow.ErrWrongKind, code, want, bf.Text('g', -1))
		}
		n, acc := bf.Int64()
		if acc != big.Exact {
			return stageflow.Value{}, fmt.Errorf("%w: %s out of range", stageflow.ErrWrongKind, code)
		}
		if want == stageflow.KindDuration {
			return stageflow.Duration(time.Duration(n) * time.Second), nil
		}
		return stageflow.Int(int(n)), nil
	case ty.Equals(cty.Bool):
		return stageflow.Bool(v.True()), nil
	case ty.Equals(cty.String):
		s := v.AsString()
		if want == stageflow.KindDuration {
			d, err := time.ParseDuration(s)
			if err != nil {
				return stageflow.Value{}, fmt.Errorf("%w: %s: %w", stageflow.ErrWrongKind, code, err)
			}
			return stageflow.Duration(d), nil
		}
		return stageflow.String(s), nil
	default:
		return stageflow.Value{}, fmt.Errorf("%w: %s: unsupported %s", stageflow.ErrWrongKind, code, ty.FriendlyName())
	}
}
