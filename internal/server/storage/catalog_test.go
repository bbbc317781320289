package storage_test

import (
	"errors"
	"time"

	"worldforge/internal/server/storage"
)

func (s *StoreSuite) newSkill(name string) int64 {
	id, err := s.store.InsertCatalogItem(s.ctx, storage.Skills, "", map[string]any{"name": name})
	s.Require().NoError(err)
	return id
}

func (s *StoreSuite) TestCatalogItemRoundTrip() {
	weight := 2.5
	id, err := s.store.InsertCatalogItem(s.ctx, storage.Items, "", map[string]any{
		"name":      "Lantern",
		"item_type": "gear",
		"weight":    &weight,
	})
	s.Require().NoError(err)

	item, err := s.store.CatalogItem(s.ctx, storage.Items, id)
	s.Require().NoError(err)
	s.Equal("Lantern", item["name"])
	s.Equal("", item["description"])
	s.Equal("gear", item["itemType"])
	s.Equal(&weight, item["weight"])
	s.Nil(item["cost"])
	s.Nil(item["createdById"])
}

func (s *StoreSuite) TestCatalogItemPatch() {
	cost := int64(12)
	id, err := s.store.InsertCatalogItem(s.ctx, storage.Armors, "", map[string]any{
		"name":       "Chain shirt",
		"armor_type": "medium",
		"cost":       &cost,
	})
	s.Require().NoError(err)

	class := int64(13)
	err = s.store.UpdateCatalogItem(s.ctx, storage.Armors, id, map[string]any{"armor_class": &class})
	s.Require().NoError(err)

	item, err := s.store.CatalogItem(s.ctx, storage.Armors, id)
	s.Require().NoError(err)
	s.Equal("Chain shirt", item["name"])
	s.Equal("medium", item["armorType"])
	s.Equal(&class, item["armorClass"])
	s.Equal(&cost, item["cost"])

	err = s.store.UpdateCatalogItem(s.ctx, storage.Armors, 999, map[string]any{"name": "x"})
	s.True(errors.Is(err, storage.ErrNotFound))
}

func (s *StoreSuite) TestCatalogItemsFilter() {
	for _, name := range []string{"Wyvern", "Giant Spider", "wolf"} {
		_, err := s.store.InsertCatalogItem(s.ctx, storage.Creatures, "", map[string]any{"name": name})
		s.Require().NoError(err)
	}

	rows, err := s.store.CatalogItems(s.ctx, storage.Creatures, storage.CatalogFilter{Query: "W"})
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("wolf", rows[0]["name"])
	s.Equal("Wyvern", rows[1]["name"])

	rows, err = s.store.CatalogItems(s.ctx, storage.Creatures, storage.CatalogFilter{CreatedBy: "nobody"})
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *StoreSuite) TestCatalogFilterWildcardsAreLiteral() {
	for _, name := range []string{"100% Cotton", "1000 Coins", "Sea_Salt", "Seaweed", `Back\Slash`} {
		_, err := s.store.InsertCatalogItem(s.ctx, storage.Items, "", map[string]any{"name": name})
		s.Require().NoError(err)
	}

	tests := map[string][]string{
		"%":    {"100% Cotton"},
		"0% ":  {"100% Cotton"},
		"_":    {"Sea_Salt"},
		"a_S":  {"Sea_Salt"},
		`\`:    {`Back\Slash`},
		"1000": {"1000 Coins"},
		"sea":  {"Sea_Salt", "Seaweed"},
	}
	for query, want := range tests {
		rows, err := s.store.CatalogItems(s.ctx, storage.Items, storage.CatalogFilter{Query: query})
		s.Require().NoError(err, query)
		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r["name"].(string)
		}
		s.Equal(want, names, query)
	}

	_, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Half_Elf"})
	s.Require().NoError(err)
	_, err = s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Halfling"})
	s.Require().NoError(err)
	races, err := s.store.Races(s.ctx, storage.CatalogFilter{Query: "f_"})
	s.Require().NoError(err)
	s.Require().Len(races, 1)
	s.Equal("Half_Elf", races[0].Name)
}

func (s *StoreSuite) TestCatalogFilterByCreator() {
	err := s.store.CreateUser(s.ctx, storage.UserRecord{
		UserID: "u-1", Username: "mira", PasswordHash: "hash", CreatedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	_, err = s.store.InsertCatalogItem(s.ctx, storage.MagicBuilds, "u-1", map[string]any{"name": "Fireball"})
	s.Require().NoError(err)
	_, err = s.store.InsertCatalogItem(s.ctx, storage.MagicBuilds, "", map[string]any{"name": "Frost"})
	s.Require().NoError(err)

	rows, err := s.store.CatalogItems(s.ctx, storage.MagicBuilds, storage.CatalogFilter{CreatedBy: "u-1"})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("Fireball", rows[0]["name"])
	s.Equal("u-1", rows[0]["createdById"])
}

func (s *StoreSuite) TestRaceHydration() {
	athletics := s.newSkill("Athletics")
	stealth := s.newSkill("Stealth")
	darkvision, err := s.store.InsertCatalogItem(s.ctx, storage.SpecialAbilities, "", map[string]any{"name": "Darkvision"})
	s.Require().NoError(err)

	raceID, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Dwarf"})
	s.Require().NoError(err)

	strength := int64(2)
	points := int64(1)
	err = s.store.WithTx(s.ctx, func(tx *storage.Tx) error {
		if err := tx.UpsertRaceDefinition(s.ctx, raceID, storage.RaceDefinitionPatch{Lore: storage.Some("Mountain folk")}); err != nil {
			return err
		}
		if err := tx.UpsertRaceAttributes(s.ctx, raceID, storage.RaceAttributesPatch{Strength: storage.Some(&strength)}); err != nil {
			return err
		}
		if err := tx.ReplaceBonusSkills(s.ctx, raceID, []storage.BonusSkillInput{
			{SkillID: stealth, Points: &points},
			{SkillID: athletics},
		}); err != nil {
			return err
		}
		return tx.ReplaceSpecialAbilities(s.ctx, raceID, []int64{darkvision})
	})
	s.Require().NoError(err)

	race, err := s.store.Race(s.ctx, raceID)
	s.Require().NoError(err)
	s.Require().NotNil(race.Definition)
	s.Equal("Mountain folk", race.Definition.Lore)
	s.Require().NotNil(race.Attributes)
	s.Equal(&strength, race.Attributes.Strength)
	s.Nil(race.Attributes.Speed)

	s.Require().Len(race.BonusSkills, 2)
	s.Equal(0, race.BonusSkills[0].SlotIndex)
	s.Equal("Stealth", race.BonusSkills[0].SkillName)
	s.Equal(1, race.BonusSkills[1].SlotIndex)
	s.Equal("Athletics", race.BonusSkills[1].SkillName)

	s.Require().Len(race.SpecialAbilities, 1)
	s.Equal("Darkvision", race.SpecialAbilities[0].Name)
}

func (s *StoreSuite) TestRaceWithoutDetails() {
	raceID, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Elf"})
	s.Require().NoError(err)

	race, err := s.store.Race(s.ctx, raceID)
	s.Require().NoError(err)
	s.Nil(race.Definition)
	s.Nil(race.Attributes)
	s.NotNil(race.BonusSkills)
	s.NotNil(race.SpecialAbilities)

	_, err = s.store.Race(s.ctx, raceID+1)
	s.True(errors.Is(err, storage.ErrNotFound))
}

func (s *StoreSuite) TestRaceNameUniqueIgnoringCase() {
	_, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Orc"})
	s.Require().NoError(err)
	_, err = s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "ORC"})
	s.True(errors.Is(err, storage.ErrConflict))
}

func (s *StoreSuite) TestBonusSkillReplaceIsAllOrNothing() {
	athletics := s.newSkill("Athletics")
	raceID, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Dwarf"})
	s.Require().NoError(err)

	err = s.store.WithTx(s.ctx, func(tx *storage.Tx) error {
		return tx.ReplaceBonusSkills(s.ctx, raceID, []storage.BonusSkillInput{{SkillID: athletics}})
	})
	s.Require().NoError(err)

	err = s.store.WithTx(s.ctx, func(tx *storage.Tx) error {
		return tx.ReplaceBonusSkills(s.ctx, raceID, []storage.BonusSkillInput{
			{SkillID: athletics},
			{SkillID: 9999},
		})
	})
	s.Require().Error(err)
	s.True(errors.Is(err, storage.ErrInvalidReference))

	race, err := s.store.Race(s.ctx, raceID)
	s.Require().NoError(err)
	s.Require().Len(race.BonusSkills, 1)
	s.Equal(athletics, race.BonusSkills[0].SkillID)
}

func (s *StoreSuite) TestDeleteReferencedSkillFails() {
	athletics := s.newSkill("Athletics")
	raceID, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: "Dwarf"})
	s.Require().NoError(err)

	err = s.store.WithTx(s.ctx, func(tx *storage.Tx) error {
		return tx.ReplaceBonusSkills(s.ctx, raceID, []storage.BonusSkillInput{{SkillID: athletics}})
	})
	s.Require().NoError(err)

	err = s.store.DeleteCatalogItem(s.ctx, storage.Skills, athletics)
	s.True(errors.Is(err, storage.ErrInvalidReference))

	s.Require().NoError(s.store.DeleteRace(s.ctx, raceID))
	s.Require().NoError(s.store.DeleteCatalogItem(s.ctx, storage.Skills, athletics))
	s.Equal(0, s.count("race_bonus_skills"))
}

func (s *StoreSuite) TestRacesFilter() {
	for _, name := range []string{"Halfling", "Half-Orc", "Gnome"} {
		_, err := s.store.InsertRace(s.ctx, storage.RaceRecord{Name: name})
		s.Require().NoError(err)
	}

	races, err := s.store.Races(s.ctx, storage.CatalogFilter{Query: "half"})
	s.Require().NoError(err)
	s.Require().Len(races, 2)
	s.Equal("Half-Orc", races[0].Name)
	s.Equal("Halfling", races[1].Name)
}

func (s *StoreSuite) TestUsers() {
	now := time.Now().UTC().Truncate(time.Second)
	err := s.store.CreateUser(s.ctx, storage.UserRecord{UserID: "u-1", Username: "Mira", PasswordHash: "h1", CreatedAt: now})
	s.Require().NoError(err)

	err = s.store.CreateUser(s.ctx, storage.UserRecord{UserID: "u-2", Username: "mira", PasswordHash: "h2", CreatedAt: now})
	s.True(errors.Is(err, storage.ErrConflict))

	user, err := s.store.GetUserByUsername(s.ctx, "MIRA")
	s.Require().NoError(err)
	s.Equal("u-1", user.UserID)
	s.Nil(user.LastLoginAt)

	s.Require().NoError(s.store.UpdateUserLastLogin(s.ctx, "u-1", now))
	s.Require().NoError(s.store.UpdateUserPassword(s.ctx, "u-1", "h3"))

	user, err = s.store.GetUserByID(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("h3", user.PasswordHash)
	s.NotNil(user.LastLoginAt)

	worldID, err := s.store.InsertWorld(s.ctx, storage.WorldRecord{Name: "Aria", CreatedByID: "u-1"})
	s.Require().NoError(err)
	s.Require().NoError(s.store.DeleteUserByID(s.ctx, "u-1"))

	world, err := s.store.World(s.ctx, worldID)
	s.Require().NoError(err)
	s.Nil(world.CreatedByID)

	_, err = s.store.GetUserByID(s.ctx, "u-1")
	s.True(errors.Is(err, storage.ErrNotFound))
}
