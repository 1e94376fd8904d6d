package catalog_test

import (
	"testing"

	"github.com/example/drillbot/internal/catalog"
	"github.com/example/drillbot/pkg/models"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a curriculum directory", t, func() {
		cat, err := catalog.Load("testdata", "tr")
		So(err, ShouldBeNil)

		Convey("Then language metadata is decoded", func() {
			So(cat.Language, ShouldEqual, "tr")
			So(cat.Name, ShouldEqual, "Turkish")
			So(cat.Voice, ShouldEqual, "tr-TR")
		})

		Convey("Then levels are sorted and resolvable", func() {
			So(cat.LevelNumbers(), ShouldResemble, []int{1, 2})
			So(cat.MaxLevel(), ShouldEqual, 2)
			So(cat.Level(1), ShouldNotBeNil)
			So(cat.Level(3), ShouldBeNil)
		})

		Convey("Then drill items come out phrases first, in catalog order", func() {
			items := cat.Level(1).Items()
			So(items, ShouldHaveLength, 3)
			So(items[0], ShouldResemble, models.Item{ID: "p_merhaba", Kind: models.KindPhrase, Level: 1})
			So(items[1].ID, ShouldEqual, "p_tesekkurler")
			So(items[2], ShouldResemble, models.Item{ID: "f_istiyorum", Kind: models.KindFrame, Level: 1})
		})

		Convey("Then cross-level lookups work", func() {
			So(cat.Phrase("p_yardim"), ShouldNotBeNil)
			So(cat.Frame("f_istiyorum").Description, ShouldEqual, "Saying you want something.")
			So(cat.Word("w_merhaba").Translation, ShouldEqual, "hello")
			So(cat.Phrase("missing"), ShouldBeNil)
		})

		Convey("Then referenced words and frame examples resolve", func() {
			p := cat.Phrase("p_merhaba")
			words := cat.SupportingWords(p)
			So(words, ShouldHaveLength, 1)
			So(words[0].ID, ShouldEqual, "w_merhaba")

			examples := cat.FrameExamples(cat.Frame("f_istiyorum"))
			So(examples, ShouldHaveLength, 1)
			So(examples[0].Text, ShouldEqual, "Merhaba.")
		})

		Convey("Then the TTS query honours the audio override", func() {
			So(cat.Phrase("p_merhaba").TTSQuery(), ShouldEqual, "Merhaba.")
			So(cat.Phrase("p_tesekkurler").TTSQuery(), ShouldEqual, "Teşekkürler")
		})

		Convey("Then phrase texts span the whole curriculum in level order", func() {
			So(cat.PhraseTexts(), ShouldResemble, []string{"Merhaba.", "Teşekkürler.", "Yardım lazım."})
		})

		Convey("Then authored challenges are exposed", func() {
			ch := cat.Challenge(1)
			So(ch, ShouldNotBeNil)
			So(ch.Level, ShouldEqual, 1)
			So(ch.Steps, ShouldHaveLength, 2)
			So(cat.Challenge(2), ShouldBeNil)
		})
	})

	Convey("Given a missing language", t, func() {
		_, err := catalog.Load("testdata", "xx")
		So(err, ShouldWrap, catalog.ErrUnknownLanguage)
	})

	Convey("Given the directory scan", t, func() {
		infos, err := catalog.Languages("testdata")
		So(err, ShouldBeNil)
		So(infos, ShouldHaveLength, 1)
		So(infos[0].Name, ShouldEqual, "Turkish")
	})
}
