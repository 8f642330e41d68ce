package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed pairs a journal's display name with its RSS/Atom URL.
type Feed struct {
	Journal string `yaml:"journal"`
	URL     string `yaml:"url"`
}

// DefaultFeeds is the curated journal feed table. Order matters: when two
// feeds share a URL or surface the same link, the first one listed wins the
// journal attribution.
var DefaultFeeds = []Feed{
	// Science family
	{"Science", "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=science"},
	{"Science (First Release)", "https://www.science.org/action/showFeed?type=axatoc&feed=rss&jc=science"},
	{"Science (News)", "https://www.science.org/rss/news_current.xml"},
	{"Science Signaling", "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=signaling"},
	{"Science Translational Medicine", "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=stm"},
	{"Science Advances", "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=sciadv"},
	{"Science Immunology", "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=sciimmunol"},
	{"Science Robotics", "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=scirobotics"},

	// Nature family
	{"Nature", "https://www.nature.com/nature.rss"},
	{"Nature Communications", "https://www.nature.com/ncomms.rss"},
	{"Nature Aging", "https://www.nature.com/nataging.rss"},
	{"Nature Machine Intelligence", "https://www.nature.com/natmachintell.rss"},
	{"Nature Computational Science", "https://www.nature.com/natcomputsci.rss"},
	{"Nature Biomedical Engineering", "https://www.nature.com/natbiomedeng.rss"},
	{"Nature Biotechnology", "https://www.nature.com/nbt.rss"},
	{"Nature Cancer", "https://www.nature.com/natcancer.rss"},
	{"Nature Medicine", "https://www.nature.com/nm.rss"},
	{"Nature Reviews Drug Discovery", "https://www.nature.com/nrd.rss"},
	{"Nature Ecology & Evolution", "https://www.nature.com/natecolevol.rss"},
	{"Nature Genetics", "https://www.nature.com/ng.rss"},
	{"Nature Immunology", "https://www.nature.com/ni.rss"},
	{"Nature Metabolism", "https://www.nature.com/natmetab.rss"},
	{"Nature Microbiology", "https://www.nature.com/nmicrobiol.rss"},
	{"Nature Chemical Biology", "https://www.nature.com/nchembio.rss"},
	{"Nature Plants", "https://www.nature.com/nplants.rss"},
	{"Nature Methods", "https://www.nature.com/nmeth.rss"},
	{"Nature Cell Biology", "https://www.nature.com/ncb.rss"},
	{"Nature Structural & Molecular Biology", "https://www.nature.com/nsmb.rss"},
	{"npj Systems Biology & Applications", "https://www.nature.com/npjsba.rss"},

	// Cell family
	{"Cell", "https://www.cell.com/cell/inpress.rss"},
	{"Trends in Biotechnology", "https://www.cell.com/trends/biotechnology/inpress.rss"},
	{"Cancer Cell", "https://www.cell.com/cancer-cell/inpress.rss"},
	{"Developmental Cell", "https://www.cell.com/developmental-cell/inpress.rss"},
	{"Trends in Ecology & Evolution", "https://www.cell.com/trends/ecology-evolution/inpress.rss"},
	{"Cell Genomics", "https://www.cell.com/cell-genomics/inpress.rss"},
	{"American Journal of Human Genetics", "https://www.cell.com/ajhg/inpress.rss"},
	{"Immunity", "https://www.cell.com/immunity/inpress.rss"},
	{"Cell Metabolism", "https://www.cell.com/cell-metabolism/inpress.rss"},
	{"Cell Host & Microbe", "https://www.cell.com/cell-host-microbe/inpress.rss"},
	{"Cell Stem Cell", "https://www.cell.com/cell-stem-cell/inpress.rss"},
	{"Stem Cell Reports", "https://www.cell.com/stem-cell-reports/inpress.rss"},
	{"Structure", "https://www.cell.com/structure/inpress.rss"},

	// Medical journals
	{"JAMA", "https://jamanetwork.com/rss/site_3/onlineFirst_67.xml"},
	{"The Lancet", "https://www.addtoany.com/add_to/feed?linkurl=http%3A%2F%2Fwww.thelancet.com%2Frssfeed%2Flancet_online.xml&type=feed&linkname=The%20Lancet%20Online%20First&linknote="},
	{"NEJM", "https://www.nejm.org/action/showFeed?jc=nejm&type=etoc&feed=rss"},

	// Others
	{"Bioinformatics", "https://academic.oup.com/rss/site_5139/3001.xml"},
	{"Nucleic Acids Research (NAR)", "https://academic.oup.com/rss/site_5127/3091.xml"},
	{"Cancer Discovery", "https://aacrjournals.org/rss/site_1000003/1000004.xml"},
	{"Genes & Development (CSHL)", "https://genesdev.cshlp.org/rss/current.xml"},
	{"Journal of Experimental Medicine (JEM)", "https://rupress.org/rss/site_1000003/LatestArticles_1000004.xml"},
	{"PLOS Computational Biology", "https://journals.plos.org/ploscompbiol/feed/atom"},
	{"Genome Biology", "https://genomebiology.biomedcentral.com/articles/most-recent/rss.xml"},
}

// LoadFeeds returns the feed table, replaced by the YAML file at path when
// one is given. The file is a list of {journal, url} entries.
func LoadFeeds(path string) ([]Feed, error) {
	if path == "" {
		return DefaultFeeds, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}
	var feeds []Feed
	if err := yaml.Unmarshal(data, &feeds); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s contains no feeds", path)
	}
	return feeds, nil
}
