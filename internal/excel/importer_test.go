package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/drillbot/internal/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCSV = `level,kind,id,text,translation,pronunciation,refs,audio
1,phrase,p1,Merhaba,Hello,mehr-hah-bah,w1,
1,phrase,,Teşekkürler,Thank you,,,tesekkurler yavas
1,word,w1,merhaba,hello,,,
1,frame,f1,[Thing] istiyorum.,Ask for a thing.,,p1,
2,phrase,p2,Hesap lütfen,The bill please,,,
,,,,,,,
`

func TestImportCurriculum(t *testing.T) {
	Convey("Given a drafted curriculum CSV", t, func() {
		dir := t.TempDir()
		src := filepath.Join(dir, "draft.csv")
		So(os.WriteFile(src, []byte(sampleCSV), 0o644), ShouldBeNil)

		config := DefaultImportConfig()
		config.FilePath = src
		config.Language = "tr"
		config.Name = "Turkish"
		config.Voice = "tr-TR-Standard-A"

		outDir := filepath.Join(dir, "content")
		result, err := ImportCurriculum(config, outDir)
		So(err, ShouldBeNil)

		Convey("All typed rows are counted and blanks skipped", func() {
			So(result.Phrases, ShouldEqual, 3)
			So(result.Frames, ShouldEqual, 1)
			So(result.Words, ShouldEqual, 1)
			So(result.Skipped, ShouldEqual, 1)
			So(result.Errors, ShouldBeEmpty)
		})

		Convey("The written YAML loads as a catalog", func() {
			cat, err := catalog.Load(outDir, "tr")
			So(err, ShouldBeNil)
			So(cat.Name, ShouldEqual, "Turkish")
			So(cat.LevelNumbers(), ShouldResemble, []int{1, 2})

			p := cat.Phrase("p1")
			So(p, ShouldNotBeNil)
			So(p.Translation, ShouldEqual, "Hello")
			So(p.WordIDs, ShouldResemble, []string{"w1"})

			f := cat.Frame("f1")
			So(f, ShouldNotBeNil)
			So(f.ExamplePhraseIDs, ShouldResemble, []string{"p1"})
			So(f.Slots, ShouldContainKey, "Thing")
		})

		Convey("Rows without an id get one generated", func() {
			cat, err := catalog.Load(outDir, "tr")
			So(err, ShouldBeNil)
			lvl := cat.Level(1)
			So(lvl.Phrases, ShouldHaveLength, 2)
			So(lvl.Phrases[1].ID, ShouldNotBeEmpty)
			So(lvl.Phrases[1].AudioQuery, ShouldEqual, "tesekkurler yavas")
		})
	})
}

func TestColumnToIndex(t *testing.T) {
	Convey("Column letters map to zero-based indexes", t, func() {
		So(columnToIndex("A"), ShouldEqual, 0)
		So(columnToIndex("H"), ShouldEqual, 7)
		So(columnToIndex("AA"), ShouldEqual, 26)
		So(columnToIndex(""), ShouldEqual, -1)
		So(columnToIndex("1"), ShouldEqual, -1)
	})
}
