package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/TimothyStiles/pfbwt/internal/diag"
	"github.com/TimothyStiles/pfbwt/marker"
	"github.com/TimothyStiles/pfbwt/markeralign"
	"github.com/TimothyStiles/pfbwt/markermerge"
	"github.com/TimothyStiles/pfbwt/markerwriter"
	"github.com/TimothyStiles/pfbwt/parser"
	"github.com/TimothyStiles/pfbwt/pfbwt"
	"github.com/TimothyStiles/pfbwt/rlewindow"
	"github.com/TimothyStiles/pfbwt/vcfscan"
)

// buildCommand implements `pfbwt build`: parse (or load) a parser, then
// reconstruct the BWT/SA/RLSA via the pfbwt builder, matching §6's CLI
// surface and the parse-only / pfbwt-only mode switches.
func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "construct the BWT (and optionally SA/RLSA) of a FASTA collection via prefix-free parsing",
		ArgsUsage: "<fasta|->",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "w", Value: 10, Usage: "window size"},
			&cli.IntFlag{Name: "p", Value: 100, Usage: "phrase modulus"},
			&cli.StringFlag{Name: "o", Usage: "output prefix (required when reading stdin)"},
			&cli.BoolFlag{Name: "sa", Usage: "emit the full suffix array"},
			&cli.BoolFlag{Name: "rlsa", Usage: "emit run-length-sampled SA (run-start/run-end samples only)"},
			&cli.BoolFlag{Name: "docs", Usage: "emit the document array (sequence name -> start offset)"},
			&cli.BoolFlag{Name: "sub-non-acgt", Usage: "replace non-ACGT bytes with 'A'"},
			&cli.BoolFlag{Name: "trim-non-acgt", Usage: "skip non-ACGT runs, recording them in .ntab"},
			&cli.BoolFlag{Name: "external-memory", Usage: "accepted for compatibility; has no effect (all arrays are held in memory)"},
			&cli.BoolFlag{Name: "parse-only", Usage: "stop after writing parser artifacts"},
			&cli.BoolFlag{Name: "pfbwt-only", Usage: "skip the parse stage; assume parser artifacts already exist at the prefix"},
			&cli.StringFlag{Name: "stdout", Usage: "write one output extension (e.g. bwt) to stdout instead of PREFIX.<ext>"},
			&cli.BoolFlag{Name: "v", Usage: "verbose diagnostic output"},
		},
		Action: func(c *cli.Context) error {
			return runBuild(c)
		},
	}
}

func runBuild(c *cli.Context) error {
	params := parser.Params{
		W:           c.Int("w"),
		P:           c.Int("p"),
		StoreSAI:    true,
		StoreDocs:   c.Bool("docs"),
		TrimNonACGT: c.Bool("trim-non-acgt"),
		SubNonACGT:  c.Bool("sub-non-acgt"),
		Verbose:     c.Bool("v"),
	}
	if err := params.Validate(); err != nil {
		return err
	}

	prefix := c.String("o")
	pfbwtOnly := c.Bool("pfbwt-only")
	var fastaPath string
	if !pfbwtOnly {
		if c.Args().Len() < 1 {
			return fmt.Errorf("build: missing fasta input (use - for stdin)")
		}
		fastaPath = c.Args().First()
		if fastaPath == "-" && prefix == "" {
			return fmt.Errorf("build: -o PREFIX is required when reading from stdin")
		}
		if prefix == "" {
			prefix = strings.TrimSuffix(fastaPath, ".fa")
			prefix = strings.TrimSuffix(prefix, ".fasta")
		}
	} else if prefix == "" {
		return fmt.Errorf("build: -o PREFIX is required in --pfbwt-only mode")
	}

	log := diag.New(os.Stderr, params.Verbose)

	var ps *parser.Parser
	var err error
	if pfbwtOnly {
		if !parser.FilesExist(prefix) {
			return fmt.Errorf("build: --pfbwt-only requires existing %s.dict/%s.parse", prefix, prefix)
		}
		ps, err = parser.Load(prefix, params)
	} else {
		ps, err = parser.ParseFromFastaFile(fastaPath, params)
	}
	if err != nil {
		return err
	}
	log.Info("parsed %d phrases over %d parse occurrences", ps.Dict().Len(), len(ps.ParseRanks()))

	if !pfbwtOnly {
		if err := ps.Save(prefix); err != nil {
			return err
		}
	}
	if c.Bool("parse-only") {
		return nil
	}

	if err := ps.SaveParseBWT(prefix, true); err != nil {
		return err
	}
	bwlast, ilist, bwsai, err := ps.BWTOfParse()
	if err != nil {
		return err
	}

	res, err := pfbwt.Build(pfbwt.Input{
		Dict:     ps.Dict(),
		BWLast:   bwlast,
		IList:    ilist,
		BWSai:    bwsai,
		WantSA:   c.Bool("sa"),
		WantRLSA: c.Bool("rlsa"),
	})
	if err != nil {
		return err
	}
	log.Info("pfbwt: %d easy-case groups, %d hard-case groups", res.EasyCount, res.HardCount)

	stdoutExt := c.String("stdout")
	if err := writeOrStdout(prefix, "bwt", stdoutExt, res.BWT); err != nil {
		return err
	}
	if c.Bool("sa") {
		if err := writeOrStdoutU64(prefix, "sa", stdoutExt, res.SA, params.WideCounts); err != nil {
			return err
		}
	}
	if c.Bool("rlsa") {
		if err := writeSampleFile(prefix+".ssa", res.RunStarts, params.WideCounts); err != nil {
			return err
		}
		if err := writeSampleFile(prefix+".esa", res.RunEnds, params.WideCounts); err != nil {
			return err
		}
	}
	return nil
}

func writeOrStdout(prefix, ext, stdoutExt string, data []byte) error {
	if stdoutExt == ext {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(prefix+"."+ext, data, 0o644)
}

func writeOrStdoutU64(prefix, ext, stdoutExt string, vals []uint64, wide bool) error {
	w := os.Stdout
	if stdoutExt != ext {
		f, err := os.Create(prefix + "." + ext)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return encodeWords(w, vals, wide)
}

func encodeWords(w *os.File, vals []uint64, wide bool) error {
	bw := bufio.NewWriter(w)
	if wide {
		buf := make([]byte, 8)
		for _, v := range vals {
			binary.LittleEndian.PutUint64(buf, v)
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	} else {
		buf := make([]byte, 4)
		for _, v := range vals {
			binary.LittleEndian.PutUint32(buf, uint32(v))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// writeSampleFile writes the P.ssa/P.esa (bwt_index, sa_value) pair
// streams described in §6.
func writeSampleFile(path string, entries []pfbwt.SAEntry, wide bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	size := 4
	if wide {
		size = 8
	}
	buf := make([]byte, size)
	for _, e := range entries {
		if wide {
			binary.LittleEndian.PutUint64(buf, e.Idx)
		} else {
			binary.LittleEndian.PutUint32(buf, uint32(e.Idx))
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
		if wide {
			binary.LittleEndian.PutUint64(buf, e.SA)
		} else {
			binary.LittleEndian.PutUint32(buf, uint32(e.SA))
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// mergeCommand implements `pfbwt merge`: the parallel parser-merge tool
// (§5, §4.1 Merge) over N FASTA inputs.
func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "parse and merge several FASTA inputs into one parser, in parallel, then finalize",
		ArgsUsage: "FASTA1 FASTA2 ...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "w", Value: 10, Usage: "window size"},
			&cli.IntFlag{Name: "p", Value: 100, Usage: "phrase modulus"},
			&cli.StringFlag{Name: "o", Required: true, Usage: "output prefix"},
			&cli.BoolFlag{Name: "v", Usage: "verbose diagnostic output"},
		},
		Action: func(c *cli.Context) error {
			params := parser.Params{W: c.Int("w"), P: c.Int("p"), StoreSAI: true, Verbose: c.Bool("v")}
			if err := params.Validate(); err != nil {
				return err
			}
			if c.Args().Len() < 2 {
				return fmt.Errorf("merge: requires at least two FASTA inputs")
			}
			merged, err := parser.MergeAll(c.Args().Slice(), params)
			if err != nil {
				return err
			}
			return merged.Save(c.String("o"))
		},
	}
}

// scanVCFCommand implements `pfbwt scan-vcf`: drives a vcfscan.Scanner
// over a fixture event file (the integration point a real htslib/BCF
// binding would satisfy) and produces a .mps marker-position file via
// the markerwriter state machine (§4.3).
func scanVCFCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan-vcf",
		Usage:     "stream variant events through the marker-position writer",
		ArgsUsage: "EVENTS...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "w", Value: 10, Usage: "window size"},
			&cli.StringFlag{Name: "o", Required: true, Usage: "output prefix; writes PREFIX.mps"},
		},
		Action: func(c *cli.Context) error {
			events, err := readEventFiles(c.Args().Slice())
			if err != nil {
				return err
			}
			out, err := os.Create(c.String("o") + ".mps")
			if err != nil {
				return err
			}
			defer out.Close()

			wr := markerwriter.New(c.Int("w"), out)
			scanner := vcfscan.FromEvents(events)
			for {
				ev, ok, err := scanner.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				if err := vcfscan.ValidateEvent(ev); err != nil {
					return err
				}
				if ev.EndOfSeq {
					if err := wr.FinishSequence(); err != nil {
						return err
					}
					continue
				}
				m := marker.New(ev.RefPos, ev.Allele, ev.SeqID)
				if err := wr.Update(ev.TextPos, int32(ev.SeqID), true, m); err != nil {
					return err
				}
			}
			return wr.FinishSequence()
		},
	}
}

// readEventFiles reads a simple whitespace-delimited fixture format:
// one event per line, "contig seqid refpos textpos allele" or the
// literal "END seqid" to mark end-of-sequence. This is the pre-extracted
// event file format the CLI reads in lieu of a live VCF/BCF stream (§1:
// VCF parsing mechanics are out of scope).
func readEventFiles(paths []string) ([]vcfscan.Event, error) {
	var events []vcfscan.Event
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("scan-vcf: open %s: %w", path, err)
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.Fields(line)
			if fields[0] == "END" {
				seqid, _ := strconv.ParseUint(fields[1], 10, 16)
				events = append(events, vcfscan.Event{SeqID: uint16(seqid), EndOfSeq: true})
				continue
			}
			if len(fields) < 5 {
				f.Close()
				return nil, fmt.Errorf("scan-vcf: malformed event line %q", line)
			}
			seqid, _ := strconv.ParseUint(fields[1], 10, 16)
			refpos, _ := strconv.ParseUint(fields[2], 10, 64)
			textpos, _ := strconv.ParseUint(fields[3], 10, 64)
			allele, _ := strconv.ParseUint(fields[4], 10, 8)
			events = append(events, vcfscan.Event{
				Contig:  fields[0],
				SeqID:   uint16(seqid),
				RefPos:  refpos,
				TextPos: textpos,
				Allele:  uint8(allele),
			})
		}
		f.Close()
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// alignMarkersCommand implements `pfbwt align-markers` (§4.5): re-indexes
// a text-position-keyed .mps store by BWT row, given the .sa file.
func alignMarkersCommand() *cli.Command {
	return &cli.Command{
		Name:  "align-markers",
		Usage: "re-order a marker-position file into suffix-array order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mps", Required: true, Usage: "input .mps file"},
			&cli.StringFlag{Name: "sa", Required: true, Usage: "input .sa file (word size selected by -wide)"},
			&cli.StringFlag{Name: "o", Required: true, Usage: "output aligned .mps file"},
			&cli.BoolFlag{Name: "wide", Usage: "the .sa file uses 8-byte words (default 4-byte)"},
		},
		Action: func(c *cli.Context) error {
			mpsFile, err := os.Open(c.String("mps"))
			if err != nil {
				return err
			}
			defer mpsFile.Close()
			runs, err := markerwriter.ReadRuns(mpsFile)
			if err != nil {
				return err
			}

			sa, err := readWords(c.String("sa"), c.Bool("wide"))
			if err != nil {
				return err
			}

			n := 0
			for _, r := range runs {
				if int(r.End)+1 > n {
					n = int(r.End) + 1
				}
			}
			store, err := rlewindow.Build(n, runs)
			if err != nil {
				return err
			}

			aligned, err := markeralign.Align(sa, store)
			if err != nil {
				return err
			}

			out, err := os.Create(c.String("o"))
			if err != nil {
				return err
			}
			defer out.Close()
			return markerwriter.WriteRuns(out, aligned)
		},
	}
}

func readWords(path string, wide bool) ([]uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	size := 4
	if wide {
		size = 8
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%s: size %d not a multiple of word size %d", path, len(b), size)
	}
	out := make([]uint64, len(b)/size)
	for i := range out {
		if wide {
			out[i] = binary.LittleEndian.Uint64(b[i*8:])
		} else {
			out[i] = uint64(binary.LittleEndian.Uint32(b[i*4:]))
		}
	}
	return out, nil
}

// mergeMPSCommand implements `pfbwt merge-mps` (§4.6): concatenate several
// marker-position streams, rebiasing keys by contig length and accumulated
// indel drift.
func mergeMPSCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge-mps",
		Usage:     "merge several per-sample marker-position files into one over the concatenated text",
		ArgsUsage: "FILE1.mps FILE2.mps ...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "w", Value: 10, Usage: "window size used when each input was scanned"},
			&cli.StringFlag{Name: "o", Required: true, Usage: "output merged .mps file"},
			&cli.StringFlag{Name: "lengths", Required: true, Usage: "comma-separated contig lengths, one per input"},
			&cli.StringFlag{Name: "indels", Usage: "comma-separated net indel deltas, one per input (defaults to 0)"},
		},
		Action: func(c *cli.Context) error {
			paths := c.Args().Slice()
			lengths := strings.Split(c.String("lengths"), ",")
			if len(lengths) != len(paths) {
				return fmt.Errorf("merge-mps: %d lengths for %d inputs", len(lengths), len(paths))
			}
			var indels []string
			if c.String("indels") != "" {
				indels = strings.Split(c.String("indels"), ",")
				if len(indels) != len(paths) {
					return fmt.Errorf("merge-mps: %d indel deltas for %d inputs", len(indels), len(paths))
				}
			}

			streams := make([]markermerge.Stream, len(paths))
			for i, path := range paths {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				runs, err := markerwriter.ReadRuns(f)
				f.Close()
				if err != nil {
					return err
				}
				l, err := strconv.ParseUint(lengths[i], 10, 64)
				if err != nil {
					return fmt.Errorf("merge-mps: bad length %q: %w", lengths[i], err)
				}
				var delta int64
				if indels != nil {
					d, err := strconv.ParseInt(indels[i], 10, 64)
					if err != nil {
						return fmt.Errorf("merge-mps: bad indel delta %q: %w", indels[i], err)
					}
					delta = d
				}
				streams[i] = markermerge.Stream{Runs: runs, ContigLen: l, IndelDelta: delta}
			}

			merged, err := markermerge.Merge(streams, c.Int("w"))
			if err != nil {
				return err
			}
			out, err := os.Create(c.String("o"))
			if err != nil {
				return err
			}
			defer out.Close()
			return markerwriter.WriteRuns(out, merged)
		},
	}
}

// dumpMPSCommand implements `pfbwt dump-mps`: a human-readable dump of a
// .mps file's runs, for inspection.
func dumpMPSCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump-mps",
		Usage:     "print the runs in a marker-position file",
		ArgsUsage: "FILE.mps",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("dump-mps: expects exactly one file")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()
			runs, err := markerwriter.ReadRuns(f)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			for _, r := range runs {
				fmt.Fprintf(w, "[%d,%d]:", r.Start, r.End)
				for _, m := range r.Markers {
					fmt.Fprintf(w, " (seq=%d allele=%d pos=%d)", m.SeqID(), m.Allele(), m.Position())
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
}

// mpsToMACommand implements `pfbwt mps-to-ma`: build the internal binary
// marker-array form (component H) directly from a .mps file, without
// rerunning the variant scanner.
func mpsToMACommand() *cli.Command {
	return &cli.Command{
		Name:      "mps-to-ma",
		Usage:     "build a marker array directly from a marker-position file",
		ArgsUsage: "FILE.mps",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "o", Required: true, Usage: "output .ma file"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("mps-to-ma: expects exactly one file")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			runs, err := markerwriter.ReadRuns(f)
			f.Close()
			if err != nil {
				return err
			}
			n := 0
			for _, r := range runs {
				if int(r.End)+1 > n {
					n = int(r.End) + 1
				}
			}
			arr, err := rlewindow.Build(n, runs)
			if err != nil {
				return err
			}
			out, err := os.Create(c.String("o"))
			if err != nil {
				return err
			}
			defer out.Close()
			return arr.Serialize(out)
		},
	}
}
