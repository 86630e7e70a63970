package gameserver

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldsFile holds the per-field crop state of the savegame.
const FieldsFile = "fields.xml"

// MaxGrowth is the growth stage at which a crop can be harvested.
const MaxGrowth = 7

// FieldStatus is the crop state of one field.
type FieldStatus struct {
	ID     string
	Fruit  string
	Growth int
	Spray  float64
	Weeds  bool
	Lime   bool
	Plowed bool
}

// Empty reports a field with nothing sown.
func (f FieldStatus) Empty() bool {
	return f.Fruit == "" || f.Fruit == "NONE"
}

func (f FieldStatus) Harvestable() bool {
	return !f.Empty() && f.Growth >= MaxGrowth
}

// ParseFieldStatuses lists every field element of fields.xml in document
// order. Unparsable numbers read as zero.
func ParseFieldStatuses(data []byte) ([]FieldStatus, error) {
	out := []FieldStatus{}
	err := walk(data, func(se xml.StartElement) {
		if se.Name.Local != "field" {
			return
		}
		id := attr(se, "number")
		if id == "" {
			id = attr(se, "id")
		}
		if id == "" {
			id = "?"
		}
		out = append(out, FieldStatus{
			ID:     id,
			Fruit:  strings.ToUpper(strings.TrimSpace(attr(se, "fruitType"))),
			Growth: int(floatAttr(se, "growthState")),
			Spray:  floatAttr(se, "sprayLevel"),
			Weeds:  floatAttr(se, "weedState") != 0,
			Lime:   floatAttr(se, "limeLevel") != 0,
			Plowed: floatAttr(se, "plowLevel") != 0,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("parse fields: %w", err)
	}
	return out, nil
}

// VehicleInfo is catalog data the savegame does not carry.
type VehicleInfo struct {
	Key          string  `yaml:"xml_key"`
	Name         string  `yaml:"name"`
	NameRU       string  `yaml:"name_ru"`
	FuelCapacity float64 `yaml:"fuel_capacity"`
	UsesFuel     *bool   `yaml:"uses_fuel"`
}

// VehicleCatalog maps a vehicle file stem to its catalog entry.
type VehicleCatalog map[string]VehicleInfo

// LoadVehicleCatalog reads a YAML (or JSON) list of vehicle entries. An
// empty path yields an empty catalog.
func LoadVehicleCatalog(p string) (VehicleCatalog, error) {
	out := VehicleCatalog{}
	if strings.TrimSpace(p) == "" {
		return out, nil
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read vehicle catalog: %w", err)
	}
	var entries []VehicleInfo
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse vehicle catalog: %w", err)
	}
	for _, e := range entries {
		if k := strings.TrimSpace(e.Key); k != "" {
			out[k] = e
		}
	}
	return out, nil
}

func (c VehicleCatalog) lookup(key string) (name string, capacity float64, usesFuel bool) {
	info, ok := c[key]
	name = key
	if !ok {
		return name, 0, false
	}
	switch {
	case info.NameRU != "":
		name = info.NameRU
	case info.Name != "":
		name = info.Name
	}
	usesFuel = info.FuelCapacity > 0
	if info.UsesFuel != nil {
		usesFuel = *info.UsesFuel
	}
	return name, info.FuelCapacity, usesFuel
}

// VehicleCondition is the wear of one owned vehicle. Dirt and Damage are
// percentages, Fuel is litres of diesel.
type VehicleCondition struct {
	Key          string
	Name         string
	Dirt         float64
	Damage       float64
	Fuel         float64
	FuelCapacity float64
	UsesFuel     bool
}

// FuelBelow reports a fuel level under share of the tank. Vehicles that
// do not burn fuel never run low.
func (v VehicleCondition) FuelBelow(share float64) bool {
	if !v.UsesFuel {
		return false
	}
	capacity := v.FuelCapacity
	if capacity <= 0 {
		capacity = 1
	}
	return v.Fuel < share*capacity
}

// needsService is false for clean, intact vehicles with enough fuel.
func (v VehicleCondition) needsService() bool {
	return v.Damage > 5 || v.Dirt > 5 || (v.FuelCapacity > 0 && v.Fuel < 0.8*v.FuelCapacity)
}

// propNames are placeable objects saved as vehicles.
var propNames = map[string]bool{
	"eggBoxPallet":          true,
	"cementBagsPallet":      true,
	"bigBag_seeds":          true,
	"bigBagHelm_fertilizer": true,
	"bigBag_fertilizer":     true,
	"goatMilkCanPallet":     true,
	"roofPlatesPallet":      true,
	"cementBricksPallet":    true,
	"cementBoxPallet":       true,
}

type vehicleXML struct {
	FarmID   string `xml:"farmId,attr"`
	Filename string `xml:"filename,attr"`
	Dirt     []struct {
		Amount string `xml:"amount,attr"`
	} `xml:"washable>dirtNode"`
	Wear *struct {
		Damage string `xml:"damage,attr"`
	} `xml:"wearable"`
	Units []struct {
		FillType  string `xml:"fillType,attr"`
		FillLevel string `xml:"fillLevel,attr"`
	} `xml:"fillUnit>unit"`
}

// ParseVehicleCondition reads dirt, damage and diesel of every vehicle
// owned by farmID, skipping props and vehicles without a file name.
func ParseVehicleCondition(data []byte, farmID string, catalog VehicleCatalog) ([]VehicleCondition, error) {
	out := []VehicleCondition{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse vehicle condition: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "vehicle" {
			continue
		}
		var v vehicleXML
		if err := dec.DecodeElement(&v, &se); err != nil {
			return nil, fmt.Errorf("parse vehicle condition: %w", err)
		}
		if v.FarmID != farmID || v.Filename == "" {
			continue
		}
		key := strings.TrimSuffix(path.Base(v.Filename), ".xml")
		if propNames[key] || isProp(v.Filename) {
			continue
		}
		cond := VehicleCondition{Key: key}
		cond.Name, cond.FuelCapacity, cond.UsesFuel = catalog.lookup(key)
		if len(v.Dirt) > 0 {
			cond.Dirt = parseFloat(v.Dirt[0].Amount) * 100
		}
		if v.Wear != nil {
			cond.Damage = parseFloat(v.Wear.Damage) * 100
		}
		for _, u := range v.Units {
			if strings.EqualFold(u.FillType, "diesel") {
				cond.Fuel = parseFloat(u.FillLevel)
				break
			}
		}
		out = append(out, cond)
	}
}

// MaintenanceReport groups vehicles by what they need first.
type MaintenanceReport struct {
	Damaged []VehicleCondition
	Dirty   []VehicleCondition
	Other   []VehicleCondition
}

func (r MaintenanceReport) Empty() bool {
	return len(r.Damaged) == 0 && len(r.Dirty) == 0 && len(r.Other) == 0
}

// ClassifyVehicles puts each vehicle needing service into one group:
// heavy damage or low fuel, then heavy dirt, then minor wear.
func ClassifyVehicles(list []VehicleCondition) MaintenanceReport {
	var r MaintenanceReport
	for _, v := range list {
		if !v.needsService() {
			continue
		}
		switch {
		case v.Damage > 50 || v.FuelBelow(0.4):
			r.Damaged = append(r.Damaged, v)
		case v.Dirt > 50:
			r.Dirty = append(r.Dirty, v)
		case v.Damage > 5 || v.Dirt > 5:
			r.Other = append(r.Other, v)
		}
	}
	return r
}

func isProp(filename string) bool {
	for _, k := range vehicleExclusions {
		if strings.Contains(filename, k) {
			return true
		}
	}
	return false
}

func floatAttr(se xml.StartElement, name string) float64 {
	return parseFloat(attr(se, name))
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
